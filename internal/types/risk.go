package types

// RiskLevel is the current assessed detection risk.
type RiskLevel string

// Risk levels in escalation order.
const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// RiskState is a snapshot of the risk shield. The shield owns the live state;
// callers only ever see copies.
type RiskState struct {
	Level              RiskLevel `json:"level"`
	CaptchaCount       int       `json:"captcha_count"`
	DOMChangesDetected bool      `json:"dom_changes_detected"`
	IPReputation       int       `json:"ip_reputation"`
	Locked             bool      `json:"locked"`
}
