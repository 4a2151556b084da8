package pkg

import "time"

// Intent is the routing category assigned to a user message by the
// classification node. The empty string means "not yet classified".
type Intent string

const (
	// IntentMedicalAdvice covers any request for new prescriptive guidance,
	// diagnosis, or prognosis. Always refused; the generation provider is
	// never involved past classification.
	IntentMedicalAdvice Intent = "MEDICAL_ADVICE"

	// IntentNoteExplanation: "I don't understand what my doctor told me",
	// translating documented notes rather than giving advice.
	IntentNoteExplanation Intent = "NOTE_EXPLANATION"

	IntentScheduling       Intent = "SCHEDULING"
	IntentRecordLookup     Intent = "RECORD_LOOKUP"
	IntentJargonExplain    Intent = "JARGON_EXPLAIN"
	IntentPreVisitPrep     Intent = "PRE_VISIT_PREP"
	IntentCareNavigation   Intent = "CARE_NAVIGATION"
	IntentRecordCollection Intent = "RECORD_COLLECTION"
	IntentMedicationInfo   Intent = "MEDICATION_INFO"
	IntentGeneral          Intent = "GENERAL"
)

// EmotionalState shapes the tone and pacing of downstream responses.
type EmotionalState string

const (
	EmotionAnxious  EmotionalState = "anxious"
	EmotionConfused EmotionalState = "confused"
	EmotionEngaged  EmotionalState = "engaged"
	EmotionCalm     EmotionalState = "calm"
)

// CareStage is where in their health journey the user appears to be.
type CareStage string

const (
	StageUnknown     CareStage = "unknown"
	StagePreVisit    CareStage = "pre-visit"
	StagePostVisit   CareStage = "post-visit"
	StagePreSurgery  CareStage = "pre-surgery"
	StagePostSurgery CareStage = "post-surgery"
	StageTreatment   CareStage = "treatment"
	StageDiagnosis   CareStage = "diagnosis"
)

// MessageRole describes who authored a message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one entry in a session transcript.
type Message struct {
	ID        int64       `json:"id,omitempty"`
	SessionID string      `json:"session_id,omitempty"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at,omitempty"`
}

// JargonMapping links a highlighted term in the assistant response to its
// plain-English meaning and the clinical note it came from. The offsets are
// a half-open interval into the CURRENT response text; any stage that
// rewrites the response must recompute or clear these mappings.
type JargonMapping struct {
	Term            string `json:"term"`
	PlainEnglish    string `json:"plain_english"`
	SourceRecordID  string `json:"source_record_id"`
	SourceSentence  string `json:"source_sentence"`
	CharOffsetStart int    `json:"char_offset_start"`
	CharOffsetEnd   int    `json:"char_offset_end"`
}

// CardType is the closed set of action-card kinds the frontend can render.
type CardType string

const (
	CardUpload              CardType = "upload"
	CardEmail               CardType = "email"
	CardConfirm             CardType = "confirm"
	CardLink                CardType = "link"
	CardMedicationReminder  CardType = "medication_reminder"
	CardAppointmentReminder CardType = "appointment_reminder"
	CardReferralFollowup    CardType = "referral_followup"
)

// ActionCard is a structured action prompt rendered below the response as an
// interactive card. Payload is type-specific and opaque to the pipeline.
type ActionCard struct {
	ID          string         `json:"id"`
	Type        CardType       `json:"type"`
	Label       string         `json:"label"`
	Description string         `json:"description"`
	Payload     map[string]any `json:"payload"`
}

// Record is a patient_records row, read-only from the pipeline.
type Record struct {
	ID           string    `json:"id"`
	RecordType   string    `json:"record_type"`
	ProviderName string    `json:"provider_name"`
	FacilityName string    `json:"facility_name,omitempty"`
	NoteDate     time.Time `json:"note_date"`
	Content      string    `json:"content"`
}

// Appointment is an upcoming appointment row.
type Appointment struct {
	ProviderName    string    `json:"provider_name"`
	FacilityName    string    `json:"facility_name,omitempty"`
	AppointmentDate time.Time `json:"appointment_date"`
	DurationMinutes int       `json:"duration_minutes,omitempty"`
	Notes           string    `json:"notes,omitempty"`
}

// NoteExcerpt is one hit from an excerpt search over the patient's own notes,
// used by the refusal terminal and the jargon explainer.
type NoteExcerpt struct {
	ProviderName string    `json:"provider_name"`
	NoteDate     time.Time `json:"note_date"`
	Excerpt      string    `json:"excerpt"`
}

// Session is one chat session.
type Session struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
