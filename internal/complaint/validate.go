package complaint

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"kavyashar.org/intake/internal/datetime"
	"kavyashar.org/intake/internal/feed"
	"kavyashar.org/intake/internal/gtfs"
	"kavyashar.org/intake/internal/utils"
)

const maxAttachments = 10

// FieldErrors maps a JSON path such as "details.eventDate" to the Hebrew
// messages for it.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

// Has reports whether field already carries an error.
func (fe FieldErrors) Has(field string) bool {
	return len(fe[field]) > 0
}

// Reference is the view of the transit feed used for cross-checks.
type Reference interface {
	Snapshot(tables ...feed.TableID) (*gtfs.Index, gtfs.LoadState)
}

// Validator checks a complaint's fields, its dates and times, and, when the
// feed tables it depends on are ready, its stop, line, operator and
// alternative against the feed.
type Validator struct {
	validate  *validator.Validate
	temporal  *datetime.Validator
	reference Reference
}

func NewValidator(temporal *datetime.Validator, reference Reference) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := registerRules(v, customRules); err != nil {
		panic(err)
	}
	return &Validator{validate: v, temporal: temporal, reference: reference}
}

// customRules are the struct tags the complaint types use beyond the
// validator's built-in ones.
var customRules = map[string]func(string) bool{
	"israeli_id": utils.IsValidIsraeliID,
	"il_mobile":  utils.IsValidIsraeliMobile,
}

func registerRules(v *validator.Validate, rules map[string]func(string) bool) error {
	for tag, valid := range rules {
		err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return valid(fl.Field().String())
		})
		if err != nil {
			return fmt.Errorf("registering %q rule: %w", tag, err)
		}
	}
	return nil
}

// Validate returns every field error and the availability of the feed
// tables the cross-checks needed. Cross-checks only run when that
// availability is ready; a loading or failed feed never rejects a complaint.
func (v *Validator) Validate(c *Complaint) (FieldErrors, gtfs.LoadState) {
	errs := FieldErrors{}
	if c == nil || c.Details == nil || !c.Type.Valid() {
		errs.Add("complaintType", "יש לבחור סוג תלונה")
		return errs, gtfs.StateReady
	}

	v.structErrors(errs, "personalDetails", &c.PersonalDetails)
	v.structErrors(errs, "details", c.Details)
	v.attachmentErrors(errs, c.Attachments)
	v.variantErrors(errs, c.Details)
	v.temporalErrors(errs, c.Details)

	state := gtfs.StateReady
	if v.reference != nil {
		state = v.referenceErrors(errs, c.Details)
	}
	return errs, state
}

func (v *Validator) structErrors(errs FieldErrors, prefix string, s any) {
	err := v.validate.Struct(s)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add(prefix, err.Error())
		return
	}
	for _, fe := range verrs {
		errs.Add(prefix+"."+fe.Field(), message(fe.Field(), fe.Tag()))
	}
}

func (v *Validator) attachmentErrors(errs FieldErrors, attachments []string) {
	if len(attachments) > maxAttachments {
		errs.Add("attachments", "ניתן לצרף עד 10 קבצים")
		return
	}
	for _, a := range attachments {
		if v.validate.Var(a, "required,url") != nil {
			errs.Add("attachments", "קישור לקובץ מצורף אינו תקין")
			return
		}
	}
}

// variantErrors covers rules between fields of one variant that struct tags
// do not express.
func (v *Validator) variantErrors(errs FieldErrors, d Details) {
	if bc, ok := d.(*BusConditionDetails); ok {
		if bc.ReplacementBusArrived != nil && *bc.ReplacementBusArrived && strings.TrimSpace(bc.ReplacementWaitTime) == "" {
			errs.Add("details.replacementWaitTime", "יש לציין את זמן ההמתנה לאוטובוס החלופי")
		}
	}
}

// temporalFields names where a variant keeps its date and its first and
// second time.
type temporalFields struct {
	dateField, firstField, secondField string
	value                              datetime.EventDateTime
}

func temporalOf(d Details) (temporalFields, bool) {
	switch d := d.(type) {
	case *StationDetails:
		return temporalFields{"eventDate", "arrivalTime", "departureTime",
			datetime.EventDateTime{Date: d.EventDate, ArrivalTime: d.ArrivalTime, DepartureTime: d.DepartureTime}}, true
	case *AddFrequencyDetails:
		return temporalFields{"eventDate", "startTime", "endTime",
			datetime.EventDateTime{Date: d.EventDate, ArrivalTime: d.StartTime, DepartureTime: d.EndTime}}, true
	case *DriverBehaviorDetails:
		return eventTimeFields(d.EventDate, d.EventTime), true
	case *OvercrowdingDetails:
		return eventTimeFields(d.EventDate, d.EventTime), true
	case *BusConditionDetails:
		return eventTimeFields(d.EventDate, d.EventTime), true
	case *LicenseViolationDetails:
		return eventTimeFields(d.EventDate, d.EventTime), true
	}
	return temporalFields{}, false
}

func eventTimeFields(date, tm string) temporalFields {
	return temporalFields{dateField: "eventDate", firstField: "eventTime",
		value: datetime.EventDateTime{Date: date, ArrivalTime: tm}}
}

func (v *Validator) temporalErrors(errs FieldErrors, d Details) {
	if v.temporal == nil {
		return
	}
	tf, ok := temporalOf(d)
	if !ok {
		return
	}
	for _, f := range []string{tf.dateField, tf.firstField, tf.secondField} {
		if f != "" && errs.Has("details."+f) {
			return
		}
	}

	key := v.temporal.Validate(tf.value)
	field := ""
	switch key {
	case datetime.OK:
		return
	case datetime.FutureDate:
		field = tf.dateField
	case datetime.FutureTime:
		field = tf.firstField
		if !v.temporal.IsTimeInFuture(tf.value.Date, tf.value.ArrivalTime) {
			field = tf.secondField
		}
	case datetime.DepartureBeforeArrival:
		field = tf.secondField
	}

	errs.Add("details."+field, key.Message())
}

// referenceErrors checks the variant against the feed. It returns the
// availability of the tables it consulted.
func (v *Validator) referenceErrors(errs FieldErrors, d Details) gtfs.LoadState {
	switch d := d.(type) {
	case *StationDetails:
		ix, state := v.reference.Snapshot(feed.Stops, feed.StopRoutes)
		if state != gtfs.StateReady || ix == nil {
			return state
		}
		if errs.Has("details.stationNumber") {
			return state
		}
		stop, ok := ix.StopByCode(d.StationNumber)
		if !ok {
			errs.Add("details.stationNumber", "מספר התחנה לא נמצא")
			return state
		}
		if d.LineNumber != "" && !ix.LineServesStop(d.LineNumber, stop.ID) {
			errs.Add("details.lineNumber", "הקו אינו עובר בתחנה שנבחרה")
		}
		return state

	case *AddLineDetails, *OtherDetails:
		return gtfs.StateReady
	}

	s := d.summary()
	alternative := alternativeOf(d)
	ix, state := v.reference.Snapshot(feed.Routes)
	if state != gtfs.StateReady || ix == nil || s.line == "" {
		return state
	}
	if !ix.HasLine(s.line) {
		errs.Add("details.lineNumber", "מספר הקו לא נמצא")
		return state
	}
	if s.operator == "" {
		return state
	}
	if !ix.OperatesLine(s.line, s.operator) {
		errs.Add("details.operator", "המפעיל שנבחר אינו מפעיל את הקו")
		return state
	}
	if alternative != "" && !ix.HasAlternative(s.line, s.operator, alternative) {
		errs.Add("details.alternative", "החלופה שנבחרה אינה שייכת לקו ולמפעיל")
	}
	return state
}

func alternativeOf(d Details) string {
	switch d := d.(type) {
	case *DriverBehaviorDetails:
		return d.Alternative
	case *OvercrowdingDetails:
		return d.Alternative
	case *AddFrequencyDetails:
		return d.Alternative
	case *BusConditionDetails:
		return d.Alternative
	}
	return ""
}

var fieldMessages = map[string]string{
	"firstName":     "שם פרטי חייב להכיל לפחות 2 תווים",
	"lastName":      "שם משפחה חייב להכיל לפחות 2 תווים",
	"idNumber":      "תעודת זהות חייבת להכיל 9 ספרות",
	"mobile":        "מספר נייד לא תקין",
	"email":         "כתובת אימייל לא תקינה",
	"city":          "יש להזין עיר",
	"street":        "יש להזין רחוב",
	"houseNumber":   "יש להזין מספר בית",
	"acceptPrivacy": "יש לאשר את מדיניות הפרטיות",
	"stationNumber": "יש להזין מספר תחנה",
	"lineNumber":    "יש להזין מספר קו",
	"operator":      "יש לבחור מפעיל",
	"eventDate":     "יש להזין תאריך",
	"description":   "תוכן הפנייה חייב להכיל לפחות 10 תווים",
}

var tagMessages = map[string]string{
	"required":      "שדה חובה",
	"required_with": "שדה חובה",
	"datetime":      "ערך לא תקין",
	"max":           "הערך ארוך מדי",
	"oneof":         "ערך לא תקין",
}

func message(field, tag string) string {
	switch {
	case field == "idNumber" && tag == "israeli_id":
		return "מספר תעודת זהות אינו תקין"
	case tag == "max":
		return tagMessages[tag]
	case tag == "datetime" && strings.HasSuffix(field, "Time"):
		return "יש להזין שעה בפורמט HH:MM"
	}
	if m, ok := fieldMessages[field]; ok {
		return m
	}
	if m, ok := tagMessages[tag]; ok {
		return m
	}
	return "ערך לא תקין"
}
