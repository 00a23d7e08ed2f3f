package api

// RegisterContainerRequest registers a container and binds its init
// process. Registration order matters: the container row lands before
// the process row so no reader ever sees a dangling binding.
type RegisterContainerRequest struct {
	ID      uint32 `json:"id"`
	Name    string `json:"name,omitempty"`
	Policy  string `json:"policy"`
	InitPID int32  `json:"init_pid"`
}

// BindProcessRequest binds an already-running pid to a registered
// container.
type BindProcessRequest struct {
	PID         int32  `json:"pid"`
	ContainerID uint32 `json:"container_id"`
}

// ContainerResponse describes a registered container.
type ContainerResponse struct {
	ID      uint32 `json:"id"`
	Name    string `json:"name,omitempty"`
	Policy  string `json:"policy"`
	InitPID int32  `json:"init_pid,omitempty"`
}

// PolicyResponse is the resolver read-through for one pid.
type PolicyResponse struct {
	PID        int32  `json:"pid"`
	Resolution string `json:"resolution"`
}

// CheckRequest dry-runs one hook decision against live state. Optional
// string inputs are pointers: absent means NULL, present-but-empty means
// an empty string. Prev carries another module's verdict, zero if none.
type CheckRequest struct {
	Hook string `json:"hook"`
	PID  int32  `json:"pid"`
	Prev int    `json:"prev,omitempty"`

	Mount  *MountCheck  `json:"mount,omitempty"`
	Open   *OpenCheck   `json:"open,omitempty"`
	Setuid *SetuidCheck `json:"setuid,omitempty"`
	Syslog *SyslogCheck `json:"syslog,omitempty"`
}

// MountCheck carries the mount hook inputs.
type MountCheck struct {
	Source *string `json:"source"`
	Target string  `json:"target"`
	FSType *string `json:"fstype"`
	Flags  uint64  `json:"flags,omitempty"`
	Data   *string `json:"data,omitempty"`
}

// OpenCheck carries the file-open hook input.
type OpenCheck struct {
	Path *string `json:"path"`
}

// SetuidCheck carries the setuid hook inputs.
type SetuidCheck struct {
	NewUID uint32 `json:"new_uid"`
	NewGID uint32 `json:"new_gid,omitempty"`
	OldUID uint32 `json:"old_uid"`
	OldGID uint32 `json:"old_gid,omitempty"`
}

// SyslogCheck carries the syslog hook input.
type SyslogCheck struct {
	Type int `json:"type"`
}

// CheckResponse is the dry-run result.
type CheckResponse struct {
	Hook    string `json:"hook"`
	PID     int32  `json:"pid"`
	Verdict int    `json:"verdict"`
	Result  string `json:"result"`
}

// HealthResponse reports daemon liveness and table occupancy.
type HealthResponse struct {
	Status     string `json:"status"`
	Containers int    `json:"containers"`
	Processes  int    `json:"processes"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
