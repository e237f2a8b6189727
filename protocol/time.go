// time.go: wire exptime -> absolute-seconds conversion.
//
// Resolves the open question spec.md §9 raises about exptime == 0: this
// implementation takes the spec's own stated compatibility-preserving
// choice ("never expires") rather than the source's literal behavior
// ("expires immediately"), special-casing 0 ahead of the relative/absolute
// branch. See DESIGN.md for the tradeoff.
package protocol

import "github.com/agilira/memline"

// neverExpires is the Exptime memline.Store treats as "no expiration": a
// point so far in the future that now >= neverExpires never holds for any
// now a real Clock will produce.
const neverExpires = int64(1) << 62

// absoluteExptime converts a wire-protocol exptime token to the absolute
// Unix-seconds form memline.Entry.Exptime stores, given the now sampled at
// the start of the command that carried it.
func absoluteExptime(now, wire int64) int64 {
	if wire == 0 {
		return neverExpires
	}
	if wire <= memline.RelativeExptimeThreshold {
		return now + wire
	}
	return wire
}
