package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func TestDecimalNumericRoundTrip(t *testing.T) {
	tests := []string{"0", "0.01", "100", "999.99", "1000000000000", "-42.5"}

	for _, s := range tests {
		d := decimal.RequireFromString(s)
		got := numericToDecimal(decimalToNumeric(d))
		if !got.Equal(d) {
			t.Errorf("round trip of %s gave %s", s, got)
		}
	}
}

func TestNumericToDecimalInvalid(t *testing.T) {
	if !numericToDecimal(pgtype.Numeric{}).Equal(decimal.Zero) {
		t.Fatalf("expected zero for invalid numeric")
	}
}

func TestTextPtrConversions(t *testing.T) {
	if textToPtr(pgtype.Text{}) != nil {
		t.Fatalf("expected nil for invalid text")
	}

	v := "res-1"
	text := ptrToText(&v)
	if !text.Valid || text.String != "res-1" {
		t.Fatalf("expected valid text, got %+v", text)
	}

	back := textToPtr(text)
	if back == nil || *back != "res-1" {
		t.Fatalf("expected res-1 back, got %v", back)
	}

	if ptrToText(nil).Valid {
		t.Fatalf("expected invalid text for nil pointer")
	}
}

func TestPgTimestamptzToTimePtr(t *testing.T) {
	if pgTimestamptzToTimePtr(pgtype.Timestamptz{}) != nil {
		t.Fatalf("expected nil for invalid timestamp")
	}

	now := time.Now().UTC()
	got := pgTimestamptzToTimePtr(timeToPgTimestamptz(now))
	if got == nil || !got.Equal(now) {
		t.Fatalf("expected %v back, got %v", now, got)
	}
}
