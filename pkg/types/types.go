// Package types defines the domain entities and status enums shared
// across the persistence layer, orchestrators and HTTP API.
package types

import "time"

// ServerStatus is the closed set of states a Server can occupy (spec
// §4.3). Unknown strings decode to ServerStatusFailed (spec invariant 1)
// so historical rows with stale status text never fail to load.
type ServerStatus string

const (
	ServerStatusSettingUp    ServerStatus = "setting_up"
	ServerStatusRunning      ServerStatus = "running"
	ServerStatusStopped      ServerStatus = "stopped"
	ServerStatusFailed       ServerStatus = "failed"
	ServerStatusDeleting     ServerStatus = "deleting"
	ServerStatusStarting     ServerStatus = "starting"
	ServerStatusStopping     ServerStatus = "stopping"
	ServerStatusRebooting    ServerStatus = "rebooting"
	ServerStatusShuttingDown ServerStatus = "shutting_down"
)

// ParseServerStatus decodes a persisted status string, falling back to
// ServerStatusFailed for anything it doesn't recognize.
func ParseServerStatus(s string) ServerStatus {
	switch ServerStatus(s) {
	case ServerStatusSettingUp, ServerStatusRunning, ServerStatusStopped,
		ServerStatusFailed, ServerStatusDeleting, ServerStatusStarting,
		ServerStatusStopping, ServerStatusRebooting, ServerStatusShuttingDown:
		return ServerStatus(s)
	default:
		return ServerStatusFailed
	}
}

// IsTransient reports whether the status represents an in-progress
// transition that is always expected to move to a stable status.
func (s ServerStatus) IsTransient() bool {
	switch s {
	case ServerStatusSettingUp, ServerStatusDeleting, ServerStatusStarting,
		ServerStatusStopping, ServerStatusRebooting, ServerStatusShuttingDown:
		return true
	default:
		return false
	}
}

// ServiceStatus is the closed set of states a Service can occupy.
type ServiceStatus string

const (
	ServiceStatusPending ServiceStatus = "pending"
	ServiceStatusActive  ServiceStatus = "active"
	ServiceStatusFailed  ServiceStatus = "failed"
)

// ParseServiceStatus decodes a persisted status string, falling back to
// ServiceStatusFailed for anything unrecognized.
func ParseServiceStatus(s string) ServiceStatus {
	switch ServiceStatus(s) {
	case ServiceStatusPending, ServiceStatusActive, ServiceStatusFailed:
		return ServiceStatus(s)
	default:
		return ServiceStatusFailed
	}
}

// Action is a user-issued lifecycle transition on a server.
type Action string

const (
	ActionStart    Action = "start"
	ActionStop     Action = "stop"
	ActionShutdown Action = "shutdown"
	ActionReboot   Action = "reboot"
)

// Valid reports whether a is one of the four supported actions.
func (a Action) Valid() bool {
	switch a {
	case ActionStart, ActionStop, ActionShutdown, ActionReboot:
		return true
	default:
		return false
	}
}

// User is a tenant principal.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Server is the persistent record of a VM a tenant owns.
type Server struct {
	ID        string
	VMID      *int64
	NodeName  *string
	HostName  string
	Status    ServerStatus
	WHMCSID   *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ServerView is a Server joined with its owning service and reserved IP,
// shaped for the GET /servers and GET /servers/{id} responses.
type ServerView struct {
	Server
	ServiceID     string
	ServiceStatus ServiceStatus
	ProductID     string
	TemplateID    string
	IPAddress     *string
}

// Service binds a user, a server, a product and a template.
type Service struct {
	ID         string
	UserID     string
	ServerID   string
	ProductID  string
	TemplateID string
	Status     ServiceStatus
	WHMCSID    *int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Product is a catalog entry referenced by services.
type Product struct {
	ID             string
	ProductGroupID string
	Name           string
}

// ProductGroup is a catalog grouping of products.
type ProductGroup struct {
	ID   string
	Name string
}

// VirtualizationType is the cluster-side hypervisor technology a
// template targets.
type VirtualizationType string

const (
	VirtualizationQEMU VirtualizationType = "qemu"
)

// Template maps an OS name to a cluster-side clone source.
type Template struct {
	ID              string
	OSName          string
	TemplateVMID    int64
	TemplateNode    string
	VirtualType     VirtualizationType
}

// VMRef identifies a cluster-side VM by its node and numeric id —
// either a live server's VM or a template's clone source.
type VMRef struct {
	Node string
	VMID int64
}

// Network is a datacenter-scoped IP pool.
type Network struct {
	ID             string
	DatacenterName string
	Gateway        string
	SubnetMask     string
}

// IPAddress is a row in a Network; ServerID is nil when the address is
// free (spec invariant 2).
type IPAddress struct {
	ID        string
	NetworkID string
	Address   string
	ServerID  *string
}

// Known configurable-option and custom-field names (spec §4.4).
const (
	OptionCPUCores  = "cpu_cores"
	OptionRAMGB     = "ram_gb"
	FieldOS         = "os"
	FieldDatacenter = "datacenter"
)

// ConfigurableOption is a catalog-level numeric parameter definition
// (e.g. "cpu_cores").
type ConfigurableOption struct {
	ID   string
	Name string
}

// ConfigValue is a per-service numeric parameter value.
type ConfigValue struct {
	ID        string
	ServiceID string
	OptionID  string
	Value     int64
}

// CustomField is a catalog-level string parameter definition (e.g. "os").
type CustomField struct {
	ID   string
	Name string
}

// CustomValue is a per-service string parameter value.
type CustomValue struct {
	ID        string
	ServiceID string
	FieldID   string
	Value     string
}

// NewServerConfig is the set of numeric/string values carried by a
// setup request, destined for ConfigValue/CustomValue rows.
type NewServerConfig struct {
	CPUCores   int64
	RAMGB      int64
	OS         string
	Datacenter string
}
