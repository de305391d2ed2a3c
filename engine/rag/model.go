package rag

// VulnerabilityReport is the JSON contract for vulnerability analysis.
type VulnerabilityReport struct {
	DocumentName string    `json:"document_name"`
	Summary      string    `json:"summary"`
	Sections     []Section `json:"sections"`
}

// Section groups findings under one heading of the analyzed document.
type Section struct {
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities"`
}

// Vulnerability is a single finding.
type Vulnerability struct {
	Issue     string `json:"issue"`
	RiskLevel string `json:"risk_level"`
	Details   string `json:"details"`
}

// EmailDraft is the JSON contract for email drafting.
type EmailDraft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// ChatReply is the JSON contract for conversational answers.
type ChatReply struct {
	Response string `json:"response"`
}
