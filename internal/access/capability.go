package access

import (
	"github.com/alfajarsadiq/admincontrol/pkg/models"
)

// Action names something a dashboard user can do. Visibility decisions are a
// pure lookup on (role, action) so they can be tested in isolation instead of
// being scattered across handlers.
type Action string

const (
	ActionViewOrders         Action = "orders.view"
	ActionCreateOrder        Action = "orders.create"
	ActionEditOrder          Action = "orders.edit"
	ActionDeleteOrder        Action = "orders.delete"
	ActionConfirmDispatch    Action = "orders.confirm_dispatch"
	ActionConfirmDelivery    Action = "orders.confirm_delivery"
	ActionDownloadReports    Action = "reports.download"
	ActionGenerateLR         Action = "lr.generate"
	ActionManageProducts     Action = "products.manage"
	ActionManageSalespersons Action = "salespersons.manage"
	ActionManageUsers        Action = "users.manage"
)

var capabilities = map[models.Role]map[Action]bool{
	models.RoleAdmin: {
		ActionViewOrders:         true,
		ActionCreateOrder:        true,
		ActionEditOrder:          true,
		ActionDeleteOrder:        true,
		ActionConfirmDispatch:    true,
		ActionConfirmDelivery:    true,
		ActionDownloadReports:    true,
		ActionGenerateLR:         true,
		ActionManageProducts:     true,
		ActionManageSalespersons: true,
		ActionManageUsers:        true,
	},
	models.RoleStandard: {
		ActionViewOrders:      true,
		ActionCreateOrder:     true,
		ActionEditOrder:       true,
		ActionConfirmDispatch: true,
		ActionConfirmDelivery: true,
		ActionDownloadReports: true,
		ActionGenerateLR:      true,
	},
	models.RoleSalesperson: {
		ActionViewOrders:      true,
		ActionCreateOrder:     true,
		ActionEditOrder:       true,
		ActionConfirmDispatch: true,
		ActionConfirmDelivery: true,
	},
	models.RoleLRUser: {
		ActionViewOrders: true,
		ActionGenerateLR: true,
	},
}

// Allowed reports whether a role may perform an action. Unknown roles and
// unknown actions are denied.
func Allowed(role models.Role, action Action) bool {
	return capabilities[role][action]
}
