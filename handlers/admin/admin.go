// handlers/admin/admin.go - Admin handler wiring.
package admin

import (
	"mediahub/services"
)

var svc *services.Service

// Init hands the admin handlers the core service. Must run before any
// admin route is served.
func Init(s *services.Service) {
	svc = s
}
