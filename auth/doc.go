// Package auth composes the account store, password hasher, and token
// service into the register / login / verify / role-check use cases. This
// is the surface an HTTP layer calls; every operation is a single atomic
// request/response transaction ending in either a result or a typed error.
//
// Results carry AccountInfo, a sanitized projection that never includes
// the password hash. Login and forgot-password responses are enumeration
// resistant: an unknown email and a wrong password are indistinguishable
// to the caller.
package auth
