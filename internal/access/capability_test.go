package access

import (
	"testing"

	"github.com/alfajarsadiq/admincontrol/pkg/models"
)

func TestAllowed(t *testing.T) {
	tests := []struct {
		name   string
		role   models.Role
		action Action
		want   bool
	}{
		{"admin_manages_users", models.RoleAdmin, ActionManageUsers, true},
		{"admin_deletes_orders", models.RoleAdmin, ActionDeleteOrder, true},
		{"standard_cannot_manage_users", models.RoleStandard, ActionManageUsers, false},
		{"standard_cannot_delete_orders", models.RoleStandard, ActionDeleteOrder, false},
		{"standard_confirms_dispatch", models.RoleStandard, ActionConfirmDispatch, true},
		{"salesperson_confirms_delivery", models.RoleSalesperson, ActionConfirmDelivery, true},
		{"salesperson_cannot_manage_products", models.RoleSalesperson, ActionManageProducts, false},
		{"salesperson_cannot_download_reports", models.RoleSalesperson, ActionDownloadReports, false},
		{"lr_user_generates_lr", models.RoleLRUser, ActionGenerateLR, true},
		{"lr_user_views_orders", models.RoleLRUser, ActionViewOrders, true},
		{"lr_user_cannot_create_orders", models.RoleLRUser, ActionCreateOrder, false},
		{"unknown_role_denied", models.Role("intern"), ActionViewOrders, false},
		{"unknown_action_denied", models.RoleAdmin, Action("server.reboot"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Allowed(tt.role, tt.action); got != tt.want {
				t.Errorf("Allowed(%q, %q) = %v, want %v", tt.role, tt.action, got, tt.want)
			}
		})
	}
}

func TestAdminHasEveryCapability(t *testing.T) {
	actions := []Action{
		ActionViewOrders, ActionCreateOrder, ActionEditOrder, ActionDeleteOrder,
		ActionConfirmDispatch, ActionConfirmDelivery, ActionDownloadReports,
		ActionGenerateLR, ActionManageProducts, ActionManageSalespersons, ActionManageUsers,
	}
	for _, a := range actions {
		if !Allowed(models.RoleAdmin, a) {
			t.Errorf("admin denied %q", a)
		}
	}
}
