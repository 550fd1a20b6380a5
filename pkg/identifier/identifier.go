// Package identifier mints and parses the human-readable ids the clinic
// console shows for appointments, records, prescriptions and supplier orders.
//
// An id has the shape <PREFIX>-<YYYYMMDD>-<seq4>.
package identifier

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type Kind string

const (
	KindAppointment   Kind = "R"
	KindRecord        Kind = "MR"
	KindPrescription  Kind = "RX"
	KindSupplierOrder Kind = "PO"
)

const (
	dateLayout = "20060102"
	seqWidth   = 4
)

var ErrMalformedIdentifier = errors.New("malformed identifier")

var shape = regexp.MustCompile(`^([A-Z]+)-(\d{8})-(\d{4})$`)

// MalformedError reports an id that does not match the expected shape.
type MalformedError struct {
	ID     string
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed identifier %q: %s", e.ID, e.Reason)
}

func (e *MalformedError) Unwrap() error { return ErrMalformedIdentifier }

func (e *MalformedError) EnvelopeCode() int { return 400 }

// ID is the decoded form of a formatted identifier.
type ID struct {
	Kind     Kind
	Date     time.Time
	Sequence string
}

func (k Kind) Valid() bool {
	switch k {
	case KindAppointment, KindRecord, KindPrescription, KindSupplierOrder:
		return true
	}
	return false
}

// FormatSequence renders n as exactly four characters. Longer values keep
// their last four digits; shorter values are left-padded with zeros.
func FormatSequence(n int) string {
	s := ""
	if n != 0 {
		s = strconv.Itoa(n)
	}
	return FormatSequenceString(s)
}

// FormatSequenceString applies the FormatSequence rule to a raw string.
func FormatSequenceString(s string) string {
	if len(s) >= seqWidth {
		return s[len(s)-seqWidth:]
	}
	return strings.Repeat("0", seqWidth-len(s)) + s
}

// Mint builds the id for kind on date with the given sequence number.
func Mint(kind Kind, date time.Time, seq int) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unknown identifier kind %q", kind)
	}
	return fmt.Sprintf("%s-%s-%s", kind, date.Format(dateLayout), FormatSequence(seq)), nil
}

// MintFromDateString is Mint for callers holding a "YYYY-MM-DD..." string.
// Separators are stripped and only the first eight digits are used.
func MintFromDateString(kind Kind, date string, seq int) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unknown identifier kind %q", kind)
	}
	digits := strings.ReplaceAll(date, "-", "")
	if len(digits) > 8 {
		digits = digits[:8]
	}
	return fmt.Sprintf("%s-%s-%s", kind, digits, FormatSequence(seq)), nil
}

// Parse decodes id. It fails with a *MalformedError when the prefix, the
// date segment or the sequence segment is not what Mint produces.
func Parse(id string) (ID, error) {
	m := shape.FindStringSubmatch(id)
	if m == nil {
		return ID{}, &MalformedError{ID: id, Reason: "expected <PREFIX>-<YYYYMMDD>-<seq4>"}
	}
	kind := Kind(m[1])
	if !kind.Valid() {
		return ID{}, &MalformedError{ID: id, Reason: fmt.Sprintf("unknown prefix %q", m[1])}
	}
	date, err := time.Parse(dateLayout, m[2])
	if err != nil {
		return ID{}, &MalformedError{ID: id, Reason: "invalid date segment"}
	}
	return ID{Kind: kind, Date: date, Sequence: m[3]}, nil
}
