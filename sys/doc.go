// Package sys is the raw binding to the TapTap PC SDK (taptap_api.dll).
//
// It mirrors the vendor headers taptap_api.h and taptap_cloudsave.h:
// result-code enumerations, event ids, fixed-layout records and the
// exported entry points. Nothing in this package owns memory or checks
// state; callers are expected to use the safe wrapper in the parent
// package instead.
//
// # Platform support
//
// The vendor only ships a Windows DLL. On every other platform Open
// returns ErrUnsupportedPlatform and no entry point is reachable.
//
// # Record layout
//
// The headers wrap their structs in #pragma pack(push, 8), which matches
// natural alignment on both 386 and amd64. The Go mirrors below rely on
// that: field order and types are chosen so the Go compiler lays them out
// exactly as MSVC does. Any change to a record must keep the
// layout tests in layout_test.go green.
package sys
