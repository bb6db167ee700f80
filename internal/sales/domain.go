package sales

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the only accepted wire format for dates.
const DateLayout = "2006-01-02"

// Sale represents the units sold for a product on a given date.
type Sale struct {
	ID        int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	ProductID string `json:"product_id" gorm:"column:product_id;not null;index"`
	Date      Date   `json:"date" gorm:"column:date;not null;index"`
	Sales     int    `json:"sales" gorm:"column:sales;not null"`
}

// TableName maps Sale to the sales table.
func (Sale) TableName() string {
	return "sales"
}

// Date is a calendar day without a time component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses s strictly as YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Before reports whether d is an earlier day than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// After reports whether d is a later day than other.
func (d Date) After(other Date) bool {
	return other.Before(d)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores the date as YYYY-MM-DD text, which sorts chronologically and
// is accepted by date columns on every supported driver.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		return d.scanText(v)
	case []byte:
		return d.scanText(string(v))
	default:
		return fmt.Errorf("cannot scan %T into sales.Date", src)
	}
}

func (d *Date) scanText(s string) error {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return fmt.Errorf("scan date %q: %w", s, err)
	}
	*d = parsed
	return nil
}

// GormDataType declares the column type used by AutoMigrate.
func (Date) GormDataType() string {
	return "date"
}

// Filter is a conjunction of optional constraints for listing sales.
// Nil fields impose no constraint.
type Filter struct {
	ProductID *string
	StartDate *Date
	EndDate   *Date
}

// Match reports whether sale satisfies every present constraint.
func (f Filter) Match(sale *Sale) bool {
	if f.ProductID != nil && sale.ProductID != *f.ProductID {
		return false
	}
	if f.StartDate != nil && sale.Date.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && sale.Date.After(*f.EndDate) {
		return false
	}
	return true
}

// SaleUpdate carries the fields of an update request. A nil field leaves the
// stored value unchanged.
type SaleUpdate struct {
	ProductID *string
	DateStr   *string
	Sales     *int
}

// ApplyTo validates every supplied field and only then writes them to sale,
// so a failed update never leaves sale half modified.
func (u SaleUpdate) ApplyTo(sale *Sale) error {
	var date Date
	if u.DateStr != nil {
		parsed, err := ParseDate(*u.DateStr)
		if err != nil {
			return &ValidationError{Field: "date_str", Value: *u.DateStr}
		}
		date = parsed
	}

	if u.ProductID != nil {
		sale.ProductID = *u.ProductID
	}
	if u.DateStr != nil {
		sale.Date = date
	}
	if u.Sales != nil {
		sale.Sales = *u.Sales
	}
	return nil
}

// Empty reports whether the update carries no fields at all.
func (u SaleUpdate) Empty() bool {
	return u.ProductID == nil && u.DateStr == nil && u.Sales == nil
}

// ValidationError reports a malformed input field.
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s must be a date in YYYY-MM-DD format, got %q", e.Field, e.Value)
}
