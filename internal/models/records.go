package models

import (
	"net"
	"strings"

	"github.com/cockroachdb/errors"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/samber/lo"

	"github.com/projecteru2/labflow/internal/network/types"
	"github.com/projecteru2/labflow/pkg/terrors"
)

// StatusActive marks a course being taught, the only status granting access.
const StatusActive = "DICTANDO"

// Student .
type Student struct {
	Code int    `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
	MAC  string `json:"mac" yaml:"mac"`
}

// Check normalizes the MAC.
func (s *Student) Check() error {
	if s.Code < 1 {
		return errors.Wrapf(terrors.ErrInvalidValue, "student code %d", s.Code)
	}
	hw, err := net.ParseMAC(s.MAC)
	if err != nil {
		return errors.Wrapf(terrors.ErrInvalidValue, "student %d mac %q", s.Code, s.MAC)
	}
	s.MAC = hw.String()
	return nil
}

// CourseServer is a server a course may reach, with the services it may use.
type CourseServer struct {
	Name            string   `json:"name" yaml:"name"`
	AllowedServices []string `json:"allowed_services" yaml:"allowed_services"`
}

// Course .
type Course struct {
	Code     string         `json:"code" yaml:"code"`
	Name     string         `json:"name" yaml:"name"`
	Status   string         `json:"status" yaml:"status"`
	Students []int          `json:"students" yaml:"students"`
	Servers  []CourseServer `json:"servers" yaml:"servers"`
}

// Check .
func (c *Course) Check() error {
	if len(c.Code) == 0 {
		return errors.Wrap(terrors.ErrInvalidValue, "empty course code")
	}
	return nil
}

// Active .
func (c *Course) Active() bool {
	return c.Status == StatusActive
}

// Enrolled .
func (c *Course) Enrolled(student int) bool {
	return mapset.NewThreadUnsafeSet(c.Students...).Contains(student)
}

// Allows reports whether an active course grants student the service on server.
func (c *Course) Allows(student int, server, service string) bool {
	if !c.Active() || !c.Enrolled(student) {
		return false
	}
	cs, ok := lo.Find(c.Servers, func(cs CourseServer) bool { return cs.Name == server })
	if !ok {
		return false
	}
	return lo.ContainsBy(cs.AllowedServices, func(s string) bool { return strings.EqualFold(s, service) })
}

// Server .
type Server struct {
	Name     string              `json:"name" yaml:"name"`
	IP       string              `json:"ip" yaml:"ip"`
	Services []types.ServiceSpec `json:"services" yaml:"services"`
}

// Check .
func (s *Server) Check() error {
	if len(s.Name) == 0 {
		return errors.Wrap(terrors.ErrInvalidValue, "empty server name")
	}
	if ip := net.ParseIP(s.IP); ip == nil || ip.To4() == nil {
		return errors.Wrapf(terrors.ErrInvalidValue, "server %s ip %q", s.Name, s.IP)
	}
	var names = mapset.NewThreadUnsafeSet[string]()
	for _, svc := range s.Services {
		switch {
		case len(svc.Name) == 0:
			return errors.Wrapf(terrors.ErrInvalidValue, "server %s has an unnamed service", s.Name)
		case svc.Port < 1 || svc.Port > 65535:
			return errors.Wrapf(terrors.ErrInvalidValue, "service %s port %d", svc.Name, svc.Port)
		case !names.Add(strings.ToLower(svc.Name)):
			return errors.Wrapf(terrors.ErrInvalidValue, "server %s has service %s twice", s.Name, svc.Name)
		}
	}
	return nil
}

// Service looks a service up by name, ignoring case.
func (s *Server) Service(name string) (types.ServiceSpec, bool) {
	return lo.Find(s.Services, func(svc types.ServiceSpec) bool {
		return strings.EqualFold(svc.Name, name)
	})
}
