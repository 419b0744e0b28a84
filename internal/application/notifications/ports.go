package notifications

// Broadcaster puerto del push en tiempo real con dos esquemas de direccionamiento:
// sala personal (user:{id}) y sala por rol (role:{ROL}). La membresía se deriva de la
// conexión autenticada, nunca del input del cliente. Best-effort: un push fallido no
// afecta el estado ya persistido.
type Broadcaster interface {
	ToUser(userID, event string, payload any)
	ToRole(role, event string, payload any)
}
