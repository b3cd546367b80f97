package service

import (
	"errors"

	"gorm.io/gorm"

	apperrors "github.com/soundofguitara/parma/pkg/errors"
)

// ── Business errors ──
//
// Messages are user-facing and returned as is by the handlers.

var (
	ErrInvalidCredentials  = errors.New("email ou mot de passe incorrect")
	ErrUserNotFound        = errors.New("utilisateur introuvable")
	ErrInvalidRefreshToken = errors.New("jeton de rafraîchissement invalide")
	ErrTokenRevoked        = errors.New("session expirée, veuillez vous reconnecter")
	ErrEmailExists         = errors.New("cet email est déjà utilisé")
	ErrUserSelfRoleChange  = errors.New("vous ne pouvez pas modifier votre propre rôle")
)

var (
	ErrBatchNotFound      = errors.New("lot introuvable")
	ErrAssignmentNotFound = errors.New("affectation introuvable")
	ErrOperatorNotFound   = errors.New("opérateur introuvable")
	ErrAnomalyNotFound    = errors.New("anomalie introuvable")
	ErrPlanningNotFound   = errors.New("planification introuvable")
)

var (
	ErrNoAnomaliesToExport = errors.New("aucune anomalie à exporter")
	ErrUnknownReportType   = errors.New("type de rapport inconnu")
	ErrUnknownExportFormat = errors.New("format d'export non pris en charge")
	ErrReportEncode        = errors.New("échec de la génération du fichier")
)

// lookupErr maps a missing row to notFound and anything else to a store failure.
func lookupErr(err, notFound error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return apperrors.Store(op, err)
}
