package quota

// CheckQuotaRequest is the body of POST /quota/check.
type CheckQuotaRequest struct {
	AppID     string    `json:"app_id" binding:"required"`
	QuotaType QuotaType `json:"quota_type" binding:"required"`
}
