package domain

import (
	"encoding/json"
	"time"
)

// Lead is a sales prospect. Optional columns are nil when NULL.
type Lead struct {
	ID                 int64      `json:"id" db:"id"`
	CompanyName        string     `json:"company_name" db:"company_name"`
	ContactPerson      *string    `json:"contact_person" db:"contact_person"`
	OrganizationNumber *string    `json:"organization_number" db:"organization_number"`
	Industry           *string    `json:"industry" db:"industry"`
	Website            *string    `json:"website" db:"website"`
	Status             string     `json:"status" db:"status"`
	Summary            *string    `json:"summary" db:"summary"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at" db:"updated_at"`
}

// LeadInput is the body of a create or full-overwrite update.
// A nil pointer means the key was absent or null. Field types are not
// checked: non-string values are stored as their JSON text.
type LeadInput struct {
	CompanyName        *string `json:"company_name" db:"company_name"`
	ContactPerson      *string `json:"contact_person" db:"contact_person"`
	OrganizationNumber *string `json:"organization_number" db:"organization_number"`
	Industry           *string `json:"industry" db:"industry"`
	Website            *string `json:"website" db:"website"`
	Status             *string `json:"status" db:"status"`
	Summary            *string `json:"summary" db:"summary"`
}

// Validate checks that the required fields are present. Values are not
// otherwise inspected; an empty string counts as present.
func (in LeadInput) Validate() error {
	if in.CompanyName == nil {
		return &ValidationError{Field: "company_name", Message: "company_name is required"}
	}
	if in.Status == nil {
		return &ValidationError{Field: "status", Message: "status is required"}
	}
	return nil
}

func (in *LeadInput) UnmarshalJSON(data []byte) error {
	var raw struct {
		CompanyName        json.RawMessage `json:"company_name"`
		ContactPerson      json.RawMessage `json:"contact_person"`
		OrganizationNumber json.RawMessage `json:"organization_number"`
		Industry           json.RawMessage `json:"industry"`
		Website            json.RawMessage `json:"website"`
		Status             json.RawMessage `json:"status"`
		Summary            json.RawMessage `json:"summary"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	fields := []struct {
		src json.RawMessage
		dst **string
	}{
		{raw.CompanyName, &in.CompanyName},
		{raw.ContactPerson, &in.ContactPerson},
		{raw.OrganizationNumber, &in.OrganizationNumber},
		{raw.Industry, &in.Industry},
		{raw.Website, &in.Website},
		{raw.Status, &in.Status},
		{raw.Summary, &in.Summary},
	}
	for _, f := range fields {
		v, err := textValue(f.src)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	return nil
}

// textValue turns a raw JSON value into column text. Strings are unquoted,
// null and absent give nil, anything else keeps its JSON spelling.
func textValue(raw json.RawMessage) (*string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return &s, nil
	}
	s := string(raw)
	return &s, nil
}
