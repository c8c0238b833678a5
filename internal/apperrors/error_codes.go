package apperrors

import "net/http"

// Kind classifies a failed call to the marketplace API.
type Kind string

const (
	KindServer  Kind = "server_error"  // the API answered with a non-2xx status
	KindNetwork Kind = "network_error" // the request was sent but no response arrived
	KindRequest Kind = "request_error" // the request could not be built
)

// Status values used when no HTTP response is available
const (
	StatusNoResponse = 0
	StatusNotSent    = -1
)

// user facing messages
const (
	MsgConnection = "Impossible de contacter le serveur. Vérifiez votre connexion."
	MsgGeneric    = "Une erreur est survenue"
	MsgValidation = "Erreur de validation"
)

// StatusMessage returns the message shown when an error response carries no usable text.
func StatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Requête invalide. Vérifiez les informations saisies."
	case http.StatusUnauthorized:
		return "Session expirée. Veuillez vous reconnecter."
	case http.StatusForbidden:
		return "Vous n'avez pas les droits nécessaires pour cette action."
	case http.StatusNotFound:
		return "Ressource introuvable."
	case http.StatusTooManyRequests:
		return "Trop de requêtes. Réessayez dans quelques instants."
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return "Le service est temporairement indisponible. Réessayez plus tard."
	default:
		return MsgGeneric
	}
}
