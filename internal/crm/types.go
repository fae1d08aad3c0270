package crm

// CustomField is one id/value pair in the vendor's custom-field schema.
type CustomField struct {
	ID    string      `json:"id"`
	Value interface{} `json:"value"`
}

// Contact represents a CRM contact in the v2 API shape.
type Contact struct {
	ID           string         `json:"id,omitempty"`
	Email        string         `json:"email,omitempty"`
	FirstName    string         `json:"firstName,omitempty"`
	LastName     string         `json:"lastName,omitempty"`
	Phone        string         `json:"phone,omitempty"`
	AssignedTo   string         `json:"assignedTo,omitempty"`
	CustomFields CustomFieldSet `json:"customFields,omitempty"`
}

// Opportunity represents a CRM pipeline opportunity.
type Opportunity struct {
	ID            string  `json:"id,omitempty"`
	Name          string  `json:"name,omitempty"`
	ContactID     string  `json:"contactId,omitempty"`
	PipelineID    string  `json:"pipelineId,omitempty"`
	StageID       string  `json:"pipelineStageId,omitempty"`
	MonetaryValue float64 `json:"monetaryValue,omitempty"`
	ExternalRef   string  `json:"externalRef,omitempty"`
	Status        string  `json:"status,omitempty"`
}
