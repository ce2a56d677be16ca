package models

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/projecteru2/labflow/internal/network/types"
	"github.com/projecteru2/labflow/pkg/terrors"
)

// Database holds the students, courses and servers of a lab.
// Getters return copies, so callers never share state with it.
type Database struct {
	mu       sync.RWMutex
	students []Student
	courses  []Course
	servers  []Server
}

// NewDatabase .
func NewDatabase() *Database {
	return &Database{}
}

// Students .
func (db *Database) Students() []Student {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return lo.Map(db.students, func(s Student, _ int) Student { return s })
}

// Student .
func (db *Database) Student(code int) (Student, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	s, ok := lo.Find(db.students, func(s Student) bool { return s.Code == code })
	if !ok {
		return s, errors.Wrapf(terrors.ErrKeyNotExists, "student %d", code)
	}
	return s, nil
}

// AddStudent .
func (db *Database) AddStudent(s Student) error {
	if err := s.Check(); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	if lo.ContainsBy(db.students, func(e Student) bool { return e.Code == s.Code }) {
		return errors.Wrapf(terrors.ErrKeyExists, "student %d", s.Code)
	}
	db.students = append(db.students, s)
	return nil
}

// Courses .
func (db *Database) Courses() []Course {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return lo.Map(db.courses, func(c Course, _ int) Course { return copyCourse(c) })
}

// Course .
func (db *Database) Course(code string) (Course, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	i := db.courseIndex(code)
	if i < 0 {
		return Course{}, errors.Wrapf(terrors.ErrKeyNotExists, "course %s", code)
	}
	return copyCourse(db.courses[i]), nil
}

// AddCourse .
func (db *Database) AddCourse(c Course) error {
	if err := c.Check(); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	if db.courseIndex(c.Code) >= 0 {
		return errors.Wrapf(terrors.ErrKeyExists, "course %s", c.Code)
	}
	db.courses = append(db.courses, copyCourse(c))
	return nil
}

// DeleteCourse .
func (db *Database) DeleteCourse(code string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	i := db.courseIndex(code)
	if i < 0 {
		return errors.Wrapf(terrors.ErrKeyNotExists, "course %s", code)
	}
	db.courses = append(db.courses[:i], db.courses[i+1:]...)
	return nil
}

// Enroll adds an existing student to a course.
func (db *Database) Enroll(course string, student int) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	i := db.courseIndex(course)
	switch {
	case i < 0:
		return errors.Wrapf(terrors.ErrKeyNotExists, "course %s", course)
	case !lo.ContainsBy(db.students, func(s Student) bool { return s.Code == student }):
		return errors.Wrapf(terrors.ErrKeyNotExists, "student %d", student)
	case db.courses[i].Enrolled(student):
		return errors.Wrapf(terrors.ErrKeyExists, "student %d in course %s", student, course)
	}
	db.courses[i].Students = append(db.courses[i].Students, student)
	return nil
}

// Unenroll .
func (db *Database) Unenroll(course string, student int) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	i := db.courseIndex(course)
	switch {
	case i < 0:
		return errors.Wrapf(terrors.ErrKeyNotExists, "course %s", course)
	case !db.courses[i].Enrolled(student):
		return errors.Wrapf(terrors.ErrKeyNotExists, "student %d in course %s", student, course)
	}
	db.courses[i].Students = lo.Without(db.courses[i].Students, student)
	return nil
}

// Servers .
func (db *Database) Servers() []Server {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return lo.Map(db.servers, func(s Server, _ int) Server { return copyServer(s) })
}

// Server .
func (db *Database) Server(name string) (Server, error) {
	return db.findServer(func(s Server) bool { return s.Name == name }, name)
}

// ServerByIP .
func (db *Database) ServerByIP(ip string) (Server, error) {
	return db.findServer(func(s Server) bool { return s.IP == ip }, ip)
}

func (db *Database) findServer(pred func(Server) bool, key string) (Server, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	s, ok := lo.Find(db.servers, pred)
	if !ok {
		return s, errors.Wrapf(terrors.ErrKeyNotExists, "server %s", key)
	}
	return copyServer(s), nil
}

// AddServer .
func (db *Database) AddServer(s Server) error {
	if err := s.Check(); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	if lo.ContainsBy(db.servers, func(e Server) bool { return e.Name == s.Name }) {
		return errors.Wrapf(terrors.ErrKeyExists, "server %s", s.Name)
	}
	db.servers = append(db.servers, copyServer(s))
	return nil
}

// Authorize checks that some active course enrolls the student and permits
// the service on the server.
func (db *Database) Authorize(student int, server, service string) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	for _, c := range db.courses {
		if c.Allows(student, server, service) {
			return nil
		}
	}
	return errors.Wrapf(terrors.ErrUnauthorized, "student %d to %s/%s", student, server, service)
}

// Resolve looks up the records a connection request names.
func (db *Database) Resolve(student int, server, service string) (Student, Server, types.ServiceSpec, error) {
	var svc types.ServiceSpec
	st, err := db.Student(student)
	if err != nil {
		return st, Server{}, svc, err
	}
	srv, err := db.Server(server)
	if err != nil {
		return st, srv, svc, err
	}
	svc, ok := srv.Service(service)
	if !ok {
		return st, srv, svc, errors.Wrapf(terrors.ErrKeyNotExists, "service %s on %s", service, server)
	}
	return st, srv, svc, nil
}

// Replace swaps in the content of doc once every record of it is valid.
func (db *Database) Replace(doc *Document) error {
	var next = NewDatabase()
	for _, s := range doc.Students {
		if err := next.AddStudent(s); err != nil {
			return err
		}
	}
	for _, s := range doc.Servers {
		if err := next.AddServer(s); err != nil {
			return err
		}
	}
	for _, c := range doc.Courses {
		if err := next.AddCourse(c); err != nil {
			return err
		}
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	db.students, db.courses, db.servers = next.students, next.courses, next.servers
	return nil
}

// Document is a snapshot of the database.
func (db *Database) Document() *Document {
	return &Document{
		Students: db.Students(),
		Courses:  db.Courses(),
		Servers:  db.Servers(),
	}
}

func (db *Database) courseIndex(code string) int {
	_, i, ok := lo.FindIndexOf(db.courses, func(c Course) bool { return c.Code == code })
	if !ok {
		return -1
	}
	return i
}

func copyCourse(c Course) Course {
	c.Students = append([]int(nil), c.Students...)
	c.Servers = lo.Map(c.Servers, func(cs CourseServer, _ int) CourseServer {
		cs.AllowedServices = append([]string(nil), cs.AllowedServices...)
		return cs
	})
	return c
}

func copyServer(s Server) Server {
	s.Services = append([]types.ServiceSpec(nil), s.Services...)
	return s
}
