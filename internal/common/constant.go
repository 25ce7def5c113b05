package common

// AccessTokenHeaderName is the HTTP header carrying the bearer access token.
const AccessTokenHeaderName = "Authorization"

// MSRMMultiplier converts the mega-denominated asset into base synthetic
// units: 1 MSRM deposit mints 10^12 gSRM.
const MSRMMultiplier uint64 = 1_000_000_000_000
