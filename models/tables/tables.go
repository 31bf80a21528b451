package tables

import "time"

// Translation unit lifecycle. The status column is the cross-worker
// concurrency signal: claiming a unit is a conditional update on it.
const (
	UnitStatusNone        = "none"
	UnitStatusPending     = "pending"
	UnitStatusTranslating = "translating"
	UnitStatusCompleted   = "completed"
	UnitStatusFailed      = "failed"
)

// Batch job lifecycle, mirroring the provider's states.
const (
	BatchStatusPending    = "pending"
	BatchStatusSubmitted  = "submitted"
	BatchStatusInProgress = "in_progress"
	BatchStatusEnded      = "ended"
	BatchStatusFailed     = "failed"
	BatchStatusExpired    = "expired"
	BatchStatusCanceled   = "canceled"
)

const (
	BatchItemPending   = "pending"
	BatchItemCompleted = "completed"
	BatchItemFailed    = "failed"
)

// TranslationUnit is one owning record's translation task. Exactly one row
// exists per record; the worker that wins the status transition owns it.
type TranslationUnit struct {
	Id            string    `xorm:"pk varchar(36) 'id'" json:"id"`
	RecordId      string    `xorm:"varchar(36) index 'record_id'" json:"record_id"`
	TenantId      string    `xorm:"varchar(36) index 'tenant_id'" json:"tenant_id"`
	DocumentId    string    `xorm:"varchar(255) index 'document_id'" json:"document_id"`
	InReplyTo     string    `xorm:"varchar(255) 'in_reply_to'" json:"in_reply_to"`
	Subject       string    `xorm:"text" json:"subject"`
	Body          string    `xorm:"longtext" json:"body"`
	SourceLang    string    `xorm:"varchar(16) 'source_lang'" json:"source_lang"`
	TargetLang    string    `xorm:"varchar(16) 'target_lang'" json:"target_lang"`
	Status        string    `xorm:"varchar(16) index" json:"status"`
	EngineUsed    string    `xorm:"varchar(32) 'engine_used'" json:"engine_used"`
	SubjectResult string    `xorm:"text 'subject_result'" json:"subject_result"`
	BodyResult    string    `xorm:"longtext 'body_result'" json:"body_result"`
	LastError     string    `xorm:"text 'last_error'" json:"last_error"`
	ClaimedAt     time.Time `xorm:"'claimed_at'" json:"claimed_at"`
	CreatedAt     time.Time `xorm:"created 'created_at'" json:"created_at"`
	UpdatedAt     time.Time `xorm:"updated 'updated_at'" json:"updated_at"`
}

func (TranslationUnit) TableName() string { return "translation_units" }

// TranslationCache is the durable cache tier. The translated value is
// immutable once written; only hit_count and updated_at move after that.
// The fingerprint deliberately carries no tenant identity, so identical
// text under identical glossary state is shared across all tenants.
type TranslationCache struct {
	Id          int64     `xorm:"pk autoincr" json:"id"`
	Fingerprint string    `xorm:"varchar(64) unique" json:"fingerprint"`
	SourceText  string    `xorm:"longtext 'source_text'" json:"source_text"`
	Translated  string    `xorm:"longtext" json:"translated"`
	SourceLang  string    `xorm:"varchar(16) 'source_lang'" json:"source_lang"`
	TargetLang  string    `xorm:"varchar(16) 'target_lang'" json:"target_lang"`
	HitCount    int64     `xorm:"'hit_count'" json:"hit_count"`
	CreatedAt   time.Time `xorm:"created 'created_at'" json:"created_at"`
	UpdatedAt   time.Time `xorm:"updated 'updated_at'" json:"updated_at"`
}

func (TranslationCache) TableName() string { return "translation_cache" }

// SharedDocTranslation stores the last translation produced for a document,
// keyed by its stable external id, so the same message reaching several
// mailboxes is translated once. Overwritten on forced re-translation.
type SharedDocTranslation struct {
	Id                int64     `xorm:"pk autoincr" json:"id"`
	DocumentId        string    `xorm:"varchar(255) unique(doc_lang) 'document_id'" json:"document_id"`
	TargetLang        string    `xorm:"varchar(16) unique(doc_lang) 'target_lang'" json:"target_lang"`
	Subject           string    `xorm:"text" json:"subject"`
	Body              string    `xorm:"longtext" json:"body"`
	SubjectTranslated string    `xorm:"text 'subject_translated'" json:"subject_translated"`
	BodyTranslated    string    `xorm:"longtext 'body_translated'" json:"body_translated"`
	EngineUsed        string    `xorm:"varchar(32) 'engine_used'" json:"engine_used"`
	CreatedAt         time.Time `xorm:"created 'created_at'" json:"created_at"`
	UpdatedAt         time.Time `xorm:"updated 'updated_at'" json:"updated_at"`
}

func (SharedDocTranslation) TableName() string { return "shared_doc_translations" }

// UsageCounter accumulates per-engine character and request counts for one
// calendar month. Increments are additive, so concurrent workers only need
// the database's own atomic increment.
type UsageCounter struct {
	Id           int64     `xorm:"pk autoincr" json:"id"`
	Engine       string    `xorm:"varchar(32) unique(engine_period)" json:"engine"`
	Period       string    `xorm:"varchar(7) unique(engine_period)" json:"period"` // YYYY-MM
	CharCount    int64     `xorm:"'char_count'" json:"char_count"`
	RequestCount int64     `xorm:"'request_count'" json:"request_count"`
	Quota        int64     `json:"quota"`
	Disabled     bool      `json:"disabled"`
	CreatedAt    time.Time `xorm:"created 'created_at'" json:"created_at"`
	UpdatedAt    time.Time `xorm:"updated 'updated_at'" json:"updated_at"`
}

func (UsageCounter) TableName() string { return "usage_counters" }

// BatchJob is one provider-side batch submission. The row is persisted
// before the provider call so a crash between submit and response is
// recoverable by re-querying the provider.
type BatchJob struct {
	Id             string    `xorm:"pk varchar(36) 'id'" json:"id"`
	ProviderJobId  string    `xorm:"varchar(64) index 'provider_job_id'" json:"provider_job_id"`
	Status         string    `xorm:"varchar(16) index" json:"status"`
	TotalItems     int       `xorm:"'total_items'" json:"total_items"`
	CompletedItems int       `xorm:"'completed_items'" json:"completed_items"`
	FailedItems    int       `xorm:"'failed_items'" json:"failed_items"`
	OutputFileId   string    `xorm:"varchar(64) 'output_file_id'" json:"output_file_id"`
	SubmittedAt    time.Time `xorm:"'submitted_at'" json:"submitted_at"`
	CompletedAt    time.Time `xorm:"'completed_at'" json:"completed_at"`
	CreatedAt      time.Time `xorm:"created 'created_at'" json:"created_at"`
	UpdatedAt      time.Time `xorm:"updated 'updated_at'" json:"updated_at"`
}

func (BatchJob) TableName() string { return "batch_jobs" }

type BatchItem struct {
	Id               string    `xorm:"pk varchar(36) 'id'" json:"id"`
	JobId            string    `xorm:"varchar(36) index 'job_id'" json:"job_id"`
	CustomId         string    `xorm:"varchar(96) unique 'custom_id'" json:"custom_id"`
	UnitId           string    `xorm:"varchar(36) 'unit_id'" json:"unit_id"`
	SourceText       string    `xorm:"longtext 'source_text'" json:"source_text"`
	SourceLang       string    `xorm:"varchar(16) 'source_lang'" json:"source_lang"`
	TargetLang       string    `xorm:"varchar(16) 'target_lang'" json:"target_lang"`
	Translated       string    `xorm:"longtext" json:"translated"`
	Status           string    `xorm:"varchar(16)" json:"status"`
	PromptTokens     int       `xorm:"'prompt_tokens'" json:"prompt_tokens"`
	CompletionTokens int       `xorm:"'completion_tokens'" json:"completion_tokens"`
	LastError        string    `xorm:"text 'last_error'" json:"last_error"`
	CreatedAt        time.Time `xorm:"created 'created_at'" json:"created_at"`
	UpdatedAt        time.Time `xorm:"updated 'updated_at'" json:"updated_at"`
}

func (BatchItem) TableName() string { return "batch_items" }

// GlossaryTerm is one tenant-scoped source→target substitution. The sorted
// set of a tenant's terms feeds the glossary fingerprint, which is part of
// every cache key for that tenant.
type GlossaryTerm struct {
	Id         int64     `xorm:"pk autoincr" json:"id"`
	TenantId   string    `xorm:"varchar(36) unique(tenant_term) 'tenant_id'" json:"tenant_id"`
	SourceTerm string    `xorm:"varchar(255) unique(tenant_term) 'source_term'" json:"source_term"`
	TargetTerm string    `xorm:"varchar(255) 'target_term'" json:"target_term"`
	CreatedAt  time.Time `xorm:"created 'created_at'" json:"created_at"`
	UpdatedAt  time.Time `xorm:"updated 'updated_at'" json:"updated_at"`
}

func (GlossaryTerm) TableName() string { return "glossary_terms" }
