package models

import (
	"time"
)

const (
	AuditActionLogin    = "LOGIN"
	AuditActionRegister = "REGISTER"
	AuditActionRefresh  = "REFRESH"

	AuditOutcomeSuccess = "SUCCESS"
	AuditOutcomeFailure = "FAILURE"
)

type AuditEvent struct {
	ID        int64
	CreatedAt time.Time
	Login     string
	Action    string
	Outcome   string
	Detail    string
}
