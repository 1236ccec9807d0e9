// AngelaMos | 2026
// dto.go

package admin

import (
	"github.com/shopspring/decimal"
)

type DashboardResponse struct {
	TotalUsers          int             `json:"total_users"`
	TotalStudents       int             `json:"total_students"`
	TotalInstructors    int             `json:"total_instructors"`
	TotalCourses        int             `json:"total_courses"`
	PublishedCourses    int             `json:"published_courses"`
	TotalEnrollments    int             `json:"total_enrollments"`
	TotalRevenue        decimal.Decimal `json:"total_revenue"`
	PendingApplications int             `json:"pending_applications"`
	PendingReviews      int             `json:"pending_reviews"`
}

type TopInstructorResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	TotalCourses  int    `json:"total_courses"`
	TotalStudents int    `json:"total_students"`
}

func ToDashboardResponse(d *Dashboard) DashboardResponse {
	return DashboardResponse(*d)
}

func ToTopInstructorResponseList(instructors []TopInstructor) []TopInstructorResponse {
	out := make([]TopInstructorResponse, len(instructors))
	for i, in := range instructors {
		out[i] = TopInstructorResponse(in)
	}
	return out
}

type SystemStatsResponse struct {
	Database DatabaseStatus `json:"database"`
	Redis    RedisStatus    `json:"redis"`
	Runtime  RuntimeStats   `json:"runtime"`
}

type DatabaseStatus struct {
	Healthy bool         `json:"healthy"`
	Latency string       `json:"latency"`
	Stats   *DBPoolStats `json:"stats,omitempty"`
}

type RedisStatus struct {
	Healthy bool            `json:"healthy"`
	Latency string          `json:"latency"`
	Stats   *RedisPoolStats `json:"stats,omitempty"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"max_open_connections"`
	OpenConnections    int    `json:"open_connections"`
	InUse              int    `json:"in_use"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"wait_count"`
	WaitDuration       string `json:"wait_duration"`
	MaxIdleClosed      int64  `json:"max_idle_closed"`
	MaxIdleTimeClosed  int64  `json:"max_idle_time_closed"`
	MaxLifetimeClosed  int64  `json:"max_lifetime_closed"`
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
	StaleConns uint32 `json:"stale_conns"`
}

type RuntimeStats struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
	MemSys       uint64 `json:"mem_sys_bytes"`
	HeapObjects  uint64 `json:"heap_objects"`
	NumGC        uint32 `json:"num_gc"`
}
