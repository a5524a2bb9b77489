// Package tapsdk is a safe Go wrapper around the TapTap PC SDK.
//
// The native library reports everything asynchronous (authorization,
// ownership changes, cloud-save responses) through C callbacks. This
// package installs one dispatcher for every event category; the
// dispatcher copies each payload into an owned Event and appends it to a
// FIFO queue. Callers drain the queue with Handle.Poll, or let Handle.Run
// poll on a ticker.
//
// # Lifecycle
//
//	sdk, err := tapsdk.Open("")
//	if err != nil {
//		return err
//	}
//	h, err := sdk.Init(pubKey)
//	if err != nil {
//		return err
//	}
//	defer h.Close()
//
// Every operation other than RestartAppIfNecessary and Init is gated on a
// live Handle and fails with NOT_INITIALIZED (or returns false) without
// touching the native library otherwise.
//
// # Threading
//
// The dispatcher runs on whichever goroutine is inside RunCallbacks,
// normally the one calling Poll. The queue and the initialization flag are
// each guarded by a mutex, so Poll and the request methods may be used
// from different goroutines.
package tapsdk
