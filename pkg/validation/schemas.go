package validation

// Request body schemas for the API's three write endpoints. Kept inline
// so the binary carries everything it needs.

// ContactSchema validates POST /contacts bodies. trust_level defaults
// to 3 in the store when omitted.
var ContactSchema = NewSchema("contact", `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"affiliation": {"type": ["string", "null"]},
		"trust_level": {"type": "integer", "minimum": 1, "maximum": 5}
	},
	"required": ["name"]
}`)

// GadgetSpecSchema validates POST /gadgets bodies.
var GadgetSpecSchema = NewSchema("gadget-spec", `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"description": {"type": ["string", "null"]},
		"in_stock": {"type": "boolean"}
	},
	"required": ["name", "in_stock"]
}`)

// IntelReportSchema validates POST /request-intel-report bodies.
var IntelReportSchema = NewSchema("intel-report", `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"recipient_email": {"type": "string", "format": "email"},
		"report_name": {"type": "string", "minLength": 1}
	},
	"required": ["recipient_email", "report_name"]
}`)
