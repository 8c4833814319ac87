// Package complaint models a rider's submission as a tagged union: the
// complaint type selects exactly one details variant. It decodes the form's
// JSON, validates it field by field and against the loaded transit feed, and
// turns an accepted complaint into a stored record.
package complaint

type Type string

const (
	NoRide           Type = "no_ride"
	NoStop           Type = "no_stop"
	Delay            Type = "delay"
	EarlyDeparture   Type = "early_departure"
	DriverBehavior   Type = "driver_behavior"
	AddLine          Type = "add_line"
	Overcrowding     Type = "overcrowding"
	AddFrequency     Type = "add_frequency"
	BusCondition     Type = "bus_condition"
	LicenseViolation Type = "license_violation"
	Other            Type = "other"
)

var allTypes = []Type{
	NoRide, NoStop, Delay, EarlyDeparture, DriverBehavior, AddLine,
	Overcrowding, AddFrequency, BusCondition, LicenseViolation, Other,
}

var labels = map[Type]string{
	NoRide:           "נסיעה שלא בוצעה",
	NoStop:           "אי עצירה בתחנה",
	Delay:            "איחור",
	EarlyDeparture:   "יציאה מוקדמת",
	DriverBehavior:   "התנהגות נהג",
	AddLine:          "הוספת קו",
	Overcrowding:     "צפיפות",
	AddFrequency:     "הוספת תדירות",
	BusCondition:     "מצב האוטובוס",
	LicenseViolation: "ביצוע שאינו מתאים לרישיון",
	Other:            "אחר",
}

// Types returns every complaint type in form order.
func Types() []Type {
	out := make([]Type, len(allTypes))
	copy(out, allTypes)
	return out
}

func (t Type) Label() string {
	return labels[t]
}

func (t Type) Valid() bool {
	_, ok := labels[t]
	return ok
}

// StationBased reports whether the complaint is about a stop visit and so
// carries a stop code and arrival/departure times.
func (t Type) StationBased() bool {
	switch t {
	case NoRide, NoStop, Delay, EarlyDeparture:
		return true
	}
	return false
}

type PersonalDetails struct {
	FirstName     string `json:"firstName" validate:"required,min=2,max=50"`
	LastName      string `json:"lastName" validate:"required,min=2,max=50"`
	IDNumber      string `json:"idNumber" validate:"required,len=9,numeric,israeli_id"`
	Mobile        string `json:"mobile" validate:"required,il_mobile"`
	RavKavNumber  string `json:"ravKavNumber,omitempty" validate:"omitempty,numeric,max=20"`
	City          string `json:"city" validate:"required,min=2,max=100"`
	Street        string `json:"street" validate:"required,min=2,max=100"`
	HouseNumber   string `json:"houseNumber" validate:"required,min=1,max=10"`
	Email         string `json:"email" validate:"required,email"`
	AcceptUpdates bool   `json:"acceptUpdates"`
	AcceptPrivacy bool   `json:"acceptPrivacy" validate:"required"`
}

// Details is one of the per-type variants below.
type Details interface {
	summary() summary
}

// summary is the part of a variant the store indexes.
type summary struct {
	line     string
	operator string
	stopCode string
	date     string
}

// StationDetails is shared by no_ride, no_stop, delay and early_departure.
type StationDetails struct {
	StationNumber string `json:"stationNumber" validate:"required,numeric,min=3,max=8"`
	LineNumber    string `json:"lineNumber" validate:"required,max=10"`
	ArrivalTime   string `json:"arrivalTime" validate:"required,datetime=15:04"`
	DepartureTime string `json:"departureTime,omitempty" validate:"omitempty,datetime=15:04"`
	EventDate     string `json:"eventDate" validate:"required,datetime=2006-01-02"`
	Description   string `json:"description,omitempty" validate:"max=2000"`
}

type DriverBehaviorDetails struct {
	LineNumber              string `json:"lineNumber" validate:"required,max=10"`
	Operator                string `json:"operator" validate:"required"`
	Alternative             string `json:"alternative,omitempty"`
	EventDate               string `json:"eventDate" validate:"required,datetime=2006-01-02"`
	EventTime               string `json:"eventTime" validate:"required,datetime=15:04"`
	IsPersonalRavKav        bool   `json:"isPersonalRavKav"`
	IdentifierType          string `json:"identifierType,omitempty" validate:"omitempty,oneof=ravkav license"`
	RavKavOrLicense         string `json:"ravKavOrLicense,omitempty" validate:"required_with=IdentifierType,max=20"`
	DriverName              string `json:"driverName,omitempty" validate:"max=100"`
	Description             string `json:"description" validate:"required,min=10,max=2000"`
	AcceptTestimonyMinistry bool   `json:"acceptTestimonyMinistry"`
	AcceptTestimonyCourt    bool   `json:"acceptTestimonyCourt"`
}

type AddLineDetails struct {
	OriginCity      string `json:"originCity" validate:"required,min=2,max=100"`
	DestinationCity string `json:"destinationCity" validate:"required,min=2,max=100"`
	Description     string `json:"description,omitempty" validate:"max=2000"`
}

type OvercrowdingDetails struct {
	LineNumber    string `json:"lineNumber" validate:"required,max=10"`
	Operator      string `json:"operator" validate:"required"`
	Alternative   string `json:"alternative,omitempty"`
	EventDate     string `json:"eventDate" validate:"required,datetime=2006-01-02"`
	EventTime     string `json:"eventTime" validate:"required,datetime=15:04"`
	EventLocation string `json:"eventLocation,omitempty" validate:"max=200"`
	Description   string `json:"description,omitempty" validate:"max=2000"`
}

type AddFrequencyDetails struct {
	LineNumber  string `json:"lineNumber" validate:"required,max=10"`
	Operator    string `json:"operator" validate:"required"`
	Alternative string `json:"alternative,omitempty"`
	Reason      string `json:"reason" validate:"required,max=100"`
	EventDate   string `json:"eventDate" validate:"required,datetime=2006-01-02"`
	StartTime   string `json:"startTime" validate:"required,datetime=15:04"`
	EndTime     string `json:"endTime" validate:"required,datetime=15:04"`
	Description string `json:"description,omitempty" validate:"max=2000"`
}

type BusConditionDetails struct {
	LineNumber            string `json:"lineNumber" validate:"required,max=10"`
	Operator              string `json:"operator" validate:"required"`
	Alternative           string `json:"alternative,omitempty"`
	EventDate             string `json:"eventDate" validate:"required,datetime=2006-01-02"`
	EventTime             string `json:"eventTime" validate:"required,datetime=15:04"`
	IsPersonalRavKav      bool   `json:"isPersonalRavKav"`
	IdentifierType        string `json:"identifierType,omitempty" validate:"omitempty,oneof=ravkav license"`
	RavKavOrLicense       string `json:"ravKavOrLicense,omitempty" validate:"required_with=IdentifierType,max=20"`
	IssueDescription      string `json:"issueDescription" validate:"required,min=2,max=500"`
	TripStopped           bool   `json:"tripStopped"`
	ReplacementBusArrived *bool  `json:"replacementBusArrived,omitempty"`
	ReplacementWaitTime   string `json:"replacementWaitTime,omitempty" validate:"max=20"`
	BusArrivedEmpty       *bool  `json:"busArrivedEmpty,omitempty"`
	EventLocation         string `json:"eventLocation,omitempty" validate:"max=200"`
	Description           string `json:"description,omitempty" validate:"max=2000"`
}

type LicenseViolationDetails struct {
	LineNumber  string `json:"lineNumber" validate:"required,max=10"`
	Operator    string `json:"operator" validate:"required"`
	EventCity   string `json:"eventCity" validate:"required,min=2,max=100"`
	EventDate   string `json:"eventDate" validate:"required,datetime=2006-01-02"`
	EventTime   string `json:"eventTime" validate:"required,datetime=15:04"`
	Description string `json:"description,omitempty" validate:"max=2000"`
}

type OtherDetails struct {
	Description string `json:"description" validate:"required,min=10,max=2000"`
}

func (d *StationDetails) summary() summary {
	return summary{line: d.LineNumber, stopCode: d.StationNumber, date: d.EventDate}
}

func (d *DriverBehaviorDetails) summary() summary {
	return summary{line: d.LineNumber, operator: d.Operator, date: d.EventDate}
}

func (d *AddLineDetails) summary() summary { return summary{} }

func (d *OvercrowdingDetails) summary() summary {
	return summary{line: d.LineNumber, operator: d.Operator, date: d.EventDate}
}

func (d *AddFrequencyDetails) summary() summary {
	return summary{line: d.LineNumber, operator: d.Operator, date: d.EventDate}
}

func (d *BusConditionDetails) summary() summary {
	return summary{line: d.LineNumber, operator: d.Operator, date: d.EventDate}
}

func (d *LicenseViolationDetails) summary() summary {
	return summary{line: d.LineNumber, operator: d.Operator, date: d.EventDate}
}

func (d *OtherDetails) summary() summary { return summary{} }

// newDetails returns an empty variant for t, or nil for an unknown type.
func newDetails(t Type) Details {
	switch t {
	case NoRide, NoStop, Delay, EarlyDeparture:
		return &StationDetails{}
	case DriverBehavior:
		return &DriverBehaviorDetails{}
	case AddLine:
		return &AddLineDetails{}
	case Overcrowding:
		return &OvercrowdingDetails{}
	case AddFrequency:
		return &AddFrequencyDetails{}
	case BusCondition:
		return &BusConditionDetails{}
	case LicenseViolation:
		return &LicenseViolationDetails{}
	case Other:
		return &OtherDetails{}
	}
	return nil
}
