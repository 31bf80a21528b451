package models

type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

type TranslateRequest struct {
	Text       string `json:"text"`
	TargetLang string `json:"target_lang"`
	SourceLang string `json:"source_lang,omitempty"`
	TenantId   string `json:"tenant_id,omitempty"`
}

type TranslateResponse struct {
	TranslatedText string `json:"translated_text"`
}

type RoutedTranslateRequest struct {
	Text       string `json:"text"`
	Subject    string `json:"subject,omitempty"`
	TargetLang string `json:"target_lang"`
	SourceLang string `json:"source_lang,omitempty"`
	TenantId   string `json:"tenant_id,omitempty"`
}

type ComplexityInfo struct {
	Level  string `json:"level"`
	Score  int    `json:"score"`
	Method string `json:"method"`
	Reason string `json:"reason"`
}

type RoutedTranslateResponse struct {
	TranslatedText    string         `json:"translated_text"`
	SubjectTranslated string         `json:"subject_translated,omitempty"`
	EngineUsed        string         `json:"engine_used"`
	Complexity        ComplexityInfo `json:"complexity"`
}

type UnitCreateRequest struct {
	RecordId   string `json:"record_id"`
	TenantId   string `json:"tenant_id,omitempty"`
	DocumentId string `json:"document_id,omitempty"`
	InReplyTo  string `json:"in_reply_to,omitempty"`
	Subject    string `json:"subject,omitempty"`
	Body       string `json:"body"`
	SourceLang string `json:"source_lang,omitempty"`
	TargetLang string `json:"target_lang"`
}

type UnitCreateResponse struct {
	UnitId string `json:"unit_id"`
}

type BatchUnit struct {
	UnitId     string `json:"unit_id"`
	Text       string `json:"text"`
	SourceLang string `json:"source_lang,omitempty"`
	TargetLang string `json:"target_lang"`
}

type BatchSubmitRequest struct {
	Units []BatchUnit `json:"units"`
}

type BatchSubmitResponse struct {
	JobId string `json:"job_id"`
}

type BatchStatusResponse struct {
	JobId         string `json:"job_id"`
	ProviderJobId string `json:"provider_job_id"`
	Status        string `json:"status"`
	TotalItems    int    `json:"total_items"`
	Completed     int    `json:"completed_items"`
	Failed        int    `json:"failed_items"`
}

type BatchItemResult struct {
	UnitId     string `json:"unit_id"`
	Status     string `json:"status"`
	Translated string `json:"translated,omitempty"`
	Error      string `json:"error,omitempty"`
}

type CacheStats struct {
	Entries   int64 `json:"entries"`
	TotalHits int64 `json:"total_hits"`
}

type UsageReport struct {
	Engine        string `json:"engine"`
	Period        string `json:"period"`
	TotalChars    int64  `json:"total_chars"`
	TotalRequests int64  `json:"total_requests"`
	Quota         int64  `json:"quota"`
	Remaining     int64  `json:"remaining"`
	Disabled      bool   `json:"disabled"`
}
