package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"inductionlab/sim/internal/snapshot"
)

// Session is the JSON export envelope. Measurements are dumped structurally
// at native float precision; nothing is rounded.
type Session struct {
	SavedAt      string                  `json:"saved_at"`
	Mode         string                  `json:"mode"`
	Measurements []snapshot.Measurement  `json:"measurements,omitempty"`
	Solenoid     []snapshot.MeasurementB `json:"solenoid_measurements,omitempty"`
}

// WriteJSON emits the Faraday-mode log as an indented JSON session document.
func WriteJSON(w io.Writer, measurements []snapshot.Measurement, now time.Time) error {
	session := Session{
		SavedAt:      now.UTC().Format(time.RFC3339Nano),
		Mode:         "faraday",
		Measurements: measurements,
	}
	return encodeSession(w, session)
}

// WriteJSONB emits the solenoid-mode log as an indented JSON session document.
func WriteJSONB(w io.Writer, measurements []snapshot.MeasurementB, now time.Time) error {
	session := Session{
		SavedAt:  now.UTC().Format(time.RFC3339Nano),
		Mode:     "current_to_field",
		Solenoid: measurements,
	}
	return encodeSession(w, session)
}

// ReadJSON parses a session document written by WriteJSON or WriteJSONB.
func ReadJSON(r io.Reader) (Session, error) {
	var session Session
	data, err := io.ReadAll(r)
	if err != nil {
		return Session{}, fmt.Errorf("read json session: %w", err)
	}
	if err := json.Unmarshal(data, &session); err != nil {
		return Session{}, fmt.Errorf("parse json session: %w", err)
	}
	return session, nil
}

func encodeSession(w io.Writer, session Session) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json session: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write json session: %w", err)
	}
	return nil
}
