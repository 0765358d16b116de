package credlock

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// IssueRotationTicket mints a signed, time-limited, single-use
// authorization to set a new credential for subject without knowing the
// current one (the forgot-password path). The ticket is an HS256 JWT;
// its ID is registered in Redis so it can be consumed exactly once.
// Delivery of the ticket to the credential owner is the caller's
// responsibility.
func (m *Manager) IssueRotationTicket(ctx context.Context, subject string) (string, error) {
	if m == nil {
		return "", ErrManagerNotReady
	}
	if !m.config.Rotation.Enabled || m.tickets == nil {
		return "", ErrRotationDisabled
	}
	if subject == "" {
		return "", ErrTicketInvalid
	}

	now := time.Now()
	ticketID := uuid.NewString()

	claims := jwt.RegisteredClaims{
		ID:        ticketID,
		Subject:   subject,
		Issuer:    m.config.Rotation.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.config.Rotation.TicketTTL)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString(m.config.Rotation.SigningKey)
	if err != nil {
		return "", err
	}

	if err := m.tickets.Save(ctx, ticketID, subject, m.config.Rotation.TicketTTL); err != nil {
		m.emitAudit(ctx, auditEventTicketIssue, false, subject, ErrRotationUnavailable, nil)
		return "", errors.Join(ErrRotationUnavailable, err)
	}

	m.metricInc(MetricTicketIssued)
	m.emitAudit(ctx, auditEventTicketIssue, true, subject, nil, nil)
	return token, nil
}

// RedeemRotationTicket validates and consumes a rotation ticket, then
// sets the new credential. It returns the ticket's subject and the new
// stored digest. Input validation (empty secret, confirmation mismatch)
// happens before the ticket is consumed, so a re-prompt does not burn
// the ticket; a ticket presented twice fails with [ErrTicketReplay].
func (m *Manager) RedeemRotationTicket(ctx context.Context, ticket, plaintext, confirmation string) (string, string, error) {
	if m == nil || m.deriver == nil {
		return "", "", ErrManagerNotReady
	}
	if !m.config.Rotation.Enabled || m.tickets == nil {
		return "", "", ErrRotationDisabled
	}

	claims, err := m.parseRotationTicket(ticket)
	if err != nil {
		m.metricInc(MetricTicketRejected)
		m.emitAudit(ctx, auditEventTicketRedeem, false, "", ErrTicketInvalid, nil)
		return "", "", ErrTicketInvalid
	}

	if plaintext == "" {
		return "", "", ErrEmptySecret
	}
	if plaintext != confirmation {
		return "", "", ErrConfirmationMismatch
	}

	storedSubject, err := m.tickets.Consume(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, errTicketNotFound) {
			m.metricInc(MetricTicketRejected)
			m.emitAudit(ctx, auditEventTicketRedeem, false, claims.Subject, ErrTicketReplay, nil)
			return "", "", ErrTicketReplay
		}
		m.emitAudit(ctx, auditEventTicketRedeem, false, claims.Subject, ErrRotationUnavailable, nil)
		return "", "", errors.Join(ErrRotationUnavailable, err)
	}
	if storedSubject != claims.Subject {
		m.metricInc(MetricTicketRejected)
		m.emitAudit(ctx, auditEventTicketRedeem, false, claims.Subject, ErrTicketInvalid, nil)
		return "", "", ErrTicketInvalid
	}

	encoded, err := m.encodeFresh(plaintext)
	if err != nil {
		m.emitAudit(ctx, auditEventTicketRedeem, false, claims.Subject, err, nil)
		return "", "", err
	}

	m.metricInc(MetricTicketRedeemed)
	m.metricInc(MetricSetSuccess)
	m.emitAudit(ctx, auditEventTicketRedeem, true, claims.Subject, nil, nil)
	return claims.Subject, encoded, nil
}

func (m *Manager) parseRotationTicket(ticket string) (*jwt.RegisteredClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.config.Rotation.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)

	token, err := parser.ParseWithClaims(ticket, &jwt.RegisteredClaims{}, func(*jwt.Token) (interface{}, error) {
		return m.config.Rotation.SigningKey, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}
