package model

import (
	"net/http"
	"time"
)

// Hop represents a single step in a redirect chain.
type Hop struct {
	Index  int    `json:"index"`
	URL    string `json:"url"`
	Status int    `json:"status"`
	TimeMs int64  `json:"time_ms"`
	Final  bool   `json:"final"`
}

// TLSInfo describes the encrypted transport of the final response.
type TLSInfo struct {
	Version     string    `json:"version"`
	CipherSuite string    `json:"cipher_suite"`
	CertSubject string    `json:"cert_subject,omitempty"`
	CertIssuer  string    `json:"cert_issuer,omitempty"`
	NotBefore   time.Time `json:"not_before"`
	NotAfter    time.Time `json:"not_after"`
}

// FetchResult is the record of one audited HTTP exchange. Checks must treat it
// as read-only.
type FetchResult struct {
	RequestURL    string
	FinalURL      string
	StatusCode    int
	Chain         []Hop
	Header        http.Header
	Body          []byte
	BodyTruncated bool
	TLS           *TLSInfo
	// Downgraded is set when any hop moved from https to http, Upgraded when
	// any hop moved from http to https.
	Downgraded bool
	Upgraded   bool
	FetchedAt  time.Time
}

// Values returns every occurrence of a response header in arrival order.
func (r *FetchResult) Values(name string) []string {
	if r == nil || r.Header == nil {
		return nil
	}
	return r.Header.Values(name)
}

// Effective returns the last occurrence of a header, which wins when a
// server repeats a header with conflicting values.
func (r *FetchResult) Effective(name string) (string, bool) {
	vals := r.Values(name)
	if len(vals) == 0 {
		return "", false
	}
	return vals[len(vals)-1], true
}

// Severity grades a finding. fail > warn > info.
type Severity string

const (
	SeverityInfo Severity = "info"
	SeverityWarn Severity = "warn"
	SeverityFail Severity = "fail"
)

// Weight orders severities for rendering; higher is worse.
func (s Severity) Weight() int {
	switch s {
	case SeverityFail:
		return 3
	case SeverityWarn:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// Finding is one check's outcome against a fetched response.
type Finding struct {
	Check       string   `json:"check"`
	Severity    Severity `json:"severity"`
	Message     string   `json:"message"`
	Evidence    []string `json:"evidence,omitempty"`
	Remediation string   `json:"remediation,omitempty"`
}
