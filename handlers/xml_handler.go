// handlers/xml_handler.go
package handlers

import (
	"encoding/xml"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/n4vhf/callbook/models"
)

// Basic callsign sanity check. Allows letters/numbers and a portable
// suffix like /P or /MM.
var callsignRegexp = regexp.MustCompile(`^[A-Z0-9/]{1,16}$`)

const xmlContentType = "application/xml; charset=utf-8"

// HamQTH version="2.0" response document. Legacy clients are strict
// about both the tag set and the content type, so the shapes here are
// kept exactly HamQTH-ish.
type hamqthResponse struct {
	XMLName xml.Name      `xml:"HamQTH"`
	Version string        `xml:"version,attr"`
	Session hamqthSession `xml:"session"`
	Search  *hamqthSearch `xml:"search,omitempty"`
}

type hamqthSession struct {
	SessionID string `xml:"session_id"`
	Error     string `xml:"error"`
}

type hamqthSearch struct {
	Callsign string `xml:"callsign"`
	Result   int    `xml:"result"`
	Error    string `xml:"error,omitempty"`

	AdrName    string `xml:"adr_name,omitempty"`
	AdrStreet1 string `xml:"adr_street1,omitempty"`
	AdrCity    string `xml:"adr_city,omitempty"`
	AdrCode    string `xml:"adr_adrcode,omitempty"`
	AdrZip     string `xml:"adr_zip,omitempty"`

	QTH     string `xml:"qth,omitempty"`
	USState string `xml:"us_state,omitempty"`

	Status         string `xml:"status,omitempty"`
	LicenseClass   string `xml:"license_class,omitempty"`
	GrantDate      string `xml:"grant_date,omitempty"`
	ExpiredDate    string `xml:"expired_date,omitempty"`
	LastActionDate string `xml:"last_action_date,omitempty"`
}

// LookupXMLHandler serves the HamQTH-compatible lookup:
// GET /xml.php?callsign=K0ABC
func (h *Handler) LookupXMLHandler(w http.ResponseWriter, r *http.Request) {
	callsign := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("callsign")))

	if callsign == "" || !callsignRegexp.MatchString(callsign) {
		writeXML(w, errorDocument(callsign, "Invalid callsign format"))
		return
	}

	entries, err := h.db.LookupCallsign(r.Context(), callsign)
	if err != nil {
		// Never leak DB details to legacy clients.
		log.Printf("ERROR Handlers: callsign lookup failed for %s: %v", callsign, err)
		writeXML(w, errorDocument(callsign, "Backend error"))
		return
	}
	if len(entries) == 0 {
		writeXML(w, errorDocument(callsign, "Callsign not found"))
		return
	}

	// The store already ordered candidates Active-first, newest-first.
	writeXML(w, entryDocument(entries[0]))
}

func entryDocument(entry models.CallbookEntry) hamqthResponse {
	return hamqthResponse{
		Version: "2.0",
		Session: hamqthSession{SessionID: uuid.NewString(), Error: "OK"},
		Search: &hamqthSearch{
			Callsign:       entry.Callsign,
			Result:         1,
			AdrName:        entry.LicenseeName,
			AdrStreet1:     entry.Street,
			AdrCity:        entry.City,
			AdrCode:        entry.State,
			AdrZip:         entry.Zip,
			QTH:            entry.City,
			USState:        entry.State,
			Status:         entry.LicenseStatus,
			LicenseClass:   entry.OperatorClassName,
			GrantDate:      formatDate(entry.GrantDate),
			ExpiredDate:    formatDate(entry.ExpiredDate),
			LastActionDate: formatDate(entry.LastActionDate),
		},
	}
}

func errorDocument(callsign, message string) hamqthResponse {
	return hamqthResponse{
		Version: "2.0",
		Session: hamqthSession{SessionID: uuid.NewString(), Error: message},
		Search:  &hamqthSearch{Callsign: callsign, Result: 0, Error: message},
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func writeXML(w http.ResponseWriter, doc hamqthResponse) {
	w.Header().Set("Content-Type", xmlContentType)
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		log.Printf("ERROR Handlers: failed to encode XML response: %v", err)
	}
}
