package models

import "time"

// AdminPreferences is the dashboard state an admin keeps between sessions.
type AdminPreferences struct {
	Owner       string    `json:"owner" bson:"_id"`
	SidebarOpen bool      `json:"sidebarOpen" bson:"sidebarOpen"`
	OpenMenus   []string  `json:"openMenus" bson:"openMenus"`
	OrdersView  string    `json:"ordersView" bson:"ordersView"`
	PageSize    int64     `json:"pageSize" bson:"pageSize"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// DefaultPreferences is what an admin sees before saving anything.
func DefaultPreferences(owner string) AdminPreferences {
	return AdminPreferences{
		Owner:       owner,
		SidebarOpen: true,
		OpenMenus:   []string{},
		OrdersView:  "all",
		PageSize:    10,
	}
}
