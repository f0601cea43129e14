package model

// ConsentEvent records the disclosure text a visitor agreed to and when.
type ConsentEvent struct {
	Timestamp                 string  `json:"timestamp"`
	IP                        string  `json:"ip,omitempty"`
	UserAgent                 string  `json:"userAgent"`
	ConsentText               string  `json:"consentText"`
	ConsentGiven              bool    `json:"consentGiven"`
	MarketingConsentRequested bool    `json:"marketingConsentRequested"`
	MarketingConsentText      *string `json:"marketingConsentText"`
	MarketingConsentGiven     *bool   `json:"marketingConsentGiven"`
}

// DeviceFingerprint is a passive snapshot of the client environment.
type DeviceFingerprint struct {
	Screen        string  `json:"screen"`
	Timezone      string  `json:"timezone"`
	Language      string  `json:"language"`
	Platform      string  `json:"platform"`
	CookieEnabled bool    `json:"cookieEnabled"`
	DoNotTrack    *string `json:"doNotTrack"`
}

// SubmissionPayload is the JSON body posted to the lead API.
type SubmissionPayload struct {
	SiteSlug          string            `json:"siteSlug"`
	SitePublicKey     string            `json:"sitePublicKey"`
	FormData          FormRecord        `json:"formData"`
	ConsentEvent      *ConsentEvent     `json:"consentEvent"`
	DeviceFingerprint DeviceFingerprint `json:"deviceFingerprint"`
	Source            Source            `json:"source"`
	SubmissionTime    int64             `json:"submissionTime"`
	UserAgent         string            `json:"userAgent"`
	Timestamp         string            `json:"timestamp"`
	URL               string            `json:"url"`
	IdempotencyKey    string            `json:"idempotencyKey"`
}

// Environment describes where a form is being filled in. Shells supply it;
// the submission builder copies it into the payload.
type Environment struct {
	UserAgent   string
	PageURL     string
	ClientIP    string
	Fingerprint DeviceFingerprint
}

// EventType is the closed set of widget events.
type EventType string

const (
	EventOpen   EventType = "open"
	EventClose  EventType = "close"
	EventSubmit EventType = "submit"
	EventError  EventType = "error"
)

// ErrorType classifies an error event.
type ErrorType string

const (
	ErrorHoneypot   ErrorType = "honeypot"
	ErrorTiming     ErrorType = "timing"
	ErrorValidation ErrorType = "validation"
	ErrorSubmission ErrorType = "submission"
)

// ErrorEvent is the payload of an error event.
type ErrorEvent struct {
	Type    ErrorType         `json:"type"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Err     error             `json:"-"`
}

// SubmitEvent is the payload of a submit event.
type SubmitEvent struct {
	Data   FormRecord `json:"data"`
	Result any        `json:"result"`
}
