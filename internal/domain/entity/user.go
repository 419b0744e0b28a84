package entity

import "time"

// Roles de usuario. La gestión de usuarios y credenciales vive en otro servicio;
// aquí solo se lee id, rol y estado para gates RBAC y validación de repartidores.
const (
	RoleAdmin    = "ADMIN"
	RoleManager  = "MANAGER"
	RoleSeller   = "SELLER"
	RoleDelivery = "DELIVERY"
	RoleCustomer = "CUSTOMER"
)

// StaffRoles roles que reciben notificaciones operativas (orden nueva / cancelada).
var StaffRoles = []string{RoleAdmin, RoleManager, RoleSeller}

// User vista de solo lectura del usuario (propiedad de un servicio externo).
type User struct {
	ID        string
	Name      string
	Role      string
	IsActive  bool
	CreatedAt time.Time
}

// Address dirección de entrega del cliente.
type Address struct {
	ID        string
	UserID    string
	Label     string
	Street    string
	City      string
	Latitude  *float64
	Longitude *float64
	CreatedAt time.Time
}
