package facts

import (
	"strings"
	"time"
)

// Normalization tables map vendor vocabularies onto canonical enums. They are
// total functions: any value absent from a table maps to the documented
// default, never to an error. Keep these as data, not control flow, so each
// upstream integration can be audited and extended in one place.

// verificationStatusByVendorCode maps Karza PAN verification codes.
// Lookups are case-insensitive (lowercased). Default: VerificationError.
var verificationStatusByVendorCode = map[string]VerificationStatus{
	"valid":   VerificationVerified,
	"invalid": VerificationInvalid,
	"pending": VerificationPending,
	"error":   VerificationError,
}

// stateByCode maps two-letter jurisdiction codes. Lookups are
// case-insensitive (uppercased). Default: StateOther.
var stateByCode = map[string]State{
	"AP": StateAndhraPradesh,
	"KA": StateKarnataka,
	"MH": StateMaharashtra,
	"TN": StateTamilNadu,
	"DL": StateDelhi,
	"WB": StateWestBengal,
	"GJ": StateGujarat,
	"RJ": StateRajasthan,
	"UP": StateUttarPradesh,
	"TG": StateTelangana,
}

// customerTypeBySegment maps customer-service segment labels. Lookups are
// case-insensitive (lowercased). Default: CustomerRetail.
var customerTypeBySegment = map[string]CustomerType{
	"retail":     CustomerRetail,
	"premium":    CustomerPremium,
	"corporate":  CustomerCorporate,
	"government": CustomerGovernment,
}

// fetchStatusByCode maps CIBIL service status tokens. This table is
// authoritative: callers must supply exactly these tokens, and anything else
// (including other HTTP-looking codes) defaults to FetchFailure.
var fetchStatusByCode = map[string]FetchStatus{
	"200":     FetchSuccess,
	"404":     FetchNoHistory,
	"500":     FetchFailure,
	"timeout": FetchTimeout,
}

// NormalizeVerificationStatus maps a vendor PAN status onto the canonical
// enum. Unrecognized values map to VerificationError.
func NormalizeVerificationStatus(raw string) VerificationStatus {
	if status, ok := verificationStatusByVendorCode[strings.ToLower(raw)]; ok {
		return status
	}
	return VerificationError
}

// NormalizeState maps a jurisdiction code onto the canonical enum.
// Unrecognized codes map to StateOther.
func NormalizeState(code string) State {
	if state, ok := stateByCode[strings.ToUpper(code)]; ok {
		return state
	}
	return StateOther
}

// NormalizeCustomerType maps a segment label onto the canonical enum.
// Unrecognized segments map to CustomerRetail.
func NormalizeCustomerType(segment string) CustomerType {
	if ct, ok := customerTypeBySegment[strings.ToLower(segment)]; ok {
		return ct
	}
	return CustomerRetail
}

// NormalizeFetchStatus maps a CIBIL status token onto the canonical enum.
// Unrecognized tokens map to FetchFailure.
func NormalizeFetchStatus(code string) FetchStatus {
	if status, ok := fetchStatusByCode[code]; ok {
		return status
	}
	return FetchFailure
}

// ScalePercentage converts a vendor 0-100 percentage into the canonical
// [0.0, 1.0] domain. Out-of-range inputs are clamped at both bounds, never
// rejected, so conversion stays total, monotonic, and idempotent under
// clamping.
func ScalePercentage(pct float64) float64 {
	scaled := pct / 100.0
	if scaled < 0.0 {
		return 0.0
	}
	if scaled > 1.0 {
		return 1.0
	}
	return scaled
}

// AgeAt computes whole years between birth and now using calendar-aware
// arithmetic: one year is subtracted when the current month/day precedes the
// birth month/day.
func AgeAt(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}
