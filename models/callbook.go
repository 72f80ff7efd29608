// models/callbook.go
package models

import "time"

// CallbookEntry is one row of the v_callbook view: the read-side shape
// served by the XML API and the CSV export.
type CallbookEntry struct {
	Callsign          string     `json:"callsign" csv:"callsign"`
	LicenseeName      string     `json:"licensee_name" csv:"licensee_name"`
	Street            string     `json:"street" csv:"street"`
	City              string     `json:"city" csv:"city"`
	State             string     `json:"state" csv:"state"`
	Zip               string     `json:"zip" csv:"zip"`
	LicenseStatus     string     `json:"license_status" csv:"license_status"`
	GrantDate         *time.Time `json:"grant_date,omitempty" csv:"grant_date"`
	ExpiredDate       *time.Time `json:"expired_date,omitempty" csv:"expired_date"`
	LastActionDate    *time.Time `json:"last_action_date,omitempty" csv:"last_action_date"`
	OperatorClass     string     `json:"operator_class,omitempty" csv:"operator_class"`
	OperatorClassName string     `json:"operator_class_name,omitempty" csv:"operator_class_name"`
}
