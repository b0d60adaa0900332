package asset

import "strings"

// RiskAssessment is the output of the passive risk heuristic.
type RiskAssessment struct {
	Score   int      `json:"risk_score"` // 0-100
	Level   string   `json:"risk_level"` // Info, Low, Medium, High, Critical
	Factors []string `json:"risk_factors"`
}

// highValueKeywords are URL substrings that mark likely sensitive surface.
var highValueKeywords = []string{
	"admin", "user", "account", "login", "auth", "token", "key", "secret",
	"payment", "billing", "credit", "card", "bank", "transfer", "config",
	"settings", "password", "reset", "2fa", "mfa",
}

// AssessRisk scores an endpoint from its URL and method alone. It is a
// passive heuristic, not a scan: state-changing methods, high-value
// keywords, non-production or internal hosts, and exposed configuration
// files each add to the score, capped at 100.
func AssessRisk(url, method string) RiskAssessment {
	score := 0
	var factors []string

	urlLower := strings.ToLower(url)
	methodUpper := strings.ToUpper(method)

	switch methodUpper {
	case "POST", "PUT", "PATCH", "DELETE":
		score += 20
		factors = append(factors, "State-changing method: "+methodUpper)
	}

	for _, kw := range highValueKeywords {
		if strings.Contains(urlLower, kw) {
			score += 15
			factors = append(factors, "High-value keyword: "+kw)
		}
	}

	if strings.Contains(urlLower, "dev") || strings.Contains(urlLower, "test") || strings.Contains(urlLower, "staging") {
		score += 10
		factors = append(factors, "Non-production environment (potential reduced security)")
	}

	if strings.Contains(urlLower, "internal") || strings.Contains(urlLower, "private") ||
		strings.Contains(urlLower, "vpn") || strings.Contains(urlLower, "corp") {
		score += 25
		factors = append(factors, "Internal/Private infrastructure detected")
	}

	if strings.Contains(urlLower, ".git") || strings.Contains(urlLower, ".env") ||
		strings.Contains(urlLower, "config.json") || strings.Contains(urlLower, "actuator") {
		score += 50
		factors = append(factors, "Sensitive configuration or SCM file")
	}

	if score > 100 {
		score = 100
	}

	return RiskAssessment{
		Score:   score,
		Level:   riskLevel(score),
		Factors: factors,
	}
}

func riskLevel(score int) string {
	switch {
	case score >= 80:
		return "Critical"
	case score >= 50:
		return "High"
	case score >= 30:
		return "Medium"
	case score > 0:
		return "Low"
	default:
		return "Info"
	}
}
