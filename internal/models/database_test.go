package models

import (
	"testing"

	"github.com/projecteru2/labflow/internal/network/types"
	"github.com/projecteru2/labflow/pkg/terrors"
	"github.com/projecteru2/labflow/pkg/test/assert"
)

func newLab(t *testing.T) *Database {
	db := NewDatabase()
	assert.NilErr(t, db.AddStudent(Student{Code: 20211688, Name: "Ana", MAC: "FA:16:3E:00:00:01"}))
	assert.NilErr(t, db.AddStudent(Student{Code: 20200001, Name: "Luis", MAC: "fa:16:3e:00:00:02"}))
	assert.NilErr(t, db.AddServer(Server{
		Name: "web",
		IP:   "10.0.0.3",
		Services: []types.ServiceSpec{
			{Name: "ssh", Protocol: "tcp", Port: 22},
			{Name: "dns", Protocol: "udp", Port: 53},
		},
	}))
	assert.NilErr(t, db.AddCourse(Course{
		Code:     "TEL354",
		Name:     "Redes",
		Status:   StatusActive,
		Students: []int{20211688},
		Servers:  []CourseServer{{Name: "web", AllowedServices: []string{"ssh"}}},
	}))
	return db
}

func TestAddDuplicates(t *testing.T) {
	db := newLab(t)

	s, err := db.Student(20211688)
	assert.NilErr(t, err)
	assert.Equal(t, "fa:16:3e:00:00:01", s.MAC)

	assert.True(t, terrors.IsKeyExistsErr(db.AddStudent(Student{Code: 20211688, MAC: "fa:16:3e:00:00:09"})))
	assert.True(t, terrors.IsKeyExistsErr(db.AddServer(Server{Name: "web", IP: "10.0.0.9"})))
	assert.True(t, terrors.IsKeyExistsErr(db.AddCourse(Course{Code: "TEL354"})))

	assert.Err(t, db.AddStudent(Student{Code: 1, MAC: "nope"}))
	assert.Err(t, db.AddServer(Server{Name: "x", IP: "::1"}))
	assert.Err(t, db.AddServer(Server{Name: "x", IP: "10.0.0.1", Services: []types.ServiceSpec{{Name: "a", Port: 0}}}))
	assert.Err(t, db.AddServer(Server{Name: "x", IP: "10.0.0.1", Services: []types.ServiceSpec{{Name: "a", Port: 1}, {Name: "A", Port: 2}}}))
}

func TestLookups(t *testing.T) {
	db := newLab(t)

	srv, err := db.ServerByIP("10.0.0.3")
	assert.NilErr(t, err)
	assert.Equal(t, "web", srv.Name)

	_, err = db.Server("db")
	assert.True(t, terrors.IsKeyNotExistsErr(err))

	svc, ok := srv.Service("SSH")
	assert.True(t, ok)
	assert.Equal(t, 22, svc.Port)

	// getters hand out copies
	srv.Services[0].Port = 2222
	again, err := db.Server("web")
	assert.NilErr(t, err)
	assert.Equal(t, 22, again.Services[0].Port)
}

func TestEnroll(t *testing.T) {
	db := newLab(t)

	assert.NilErr(t, db.Enroll("TEL354", 20200001))
	assert.True(t, terrors.IsKeyExistsErr(db.Enroll("TEL354", 20200001)))
	assert.True(t, terrors.IsKeyNotExistsErr(db.Enroll("TEL354", 1)))
	assert.True(t, terrors.IsKeyNotExistsErr(db.Enroll("XXX", 20200001)))

	c, err := db.Course("TEL354")
	assert.NilErr(t, err)
	assert.Equal(t, []int{20211688, 20200001}, c.Students)

	assert.NilErr(t, db.Unenroll("TEL354", 20211688))
	assert.True(t, terrors.IsKeyNotExistsErr(db.Unenroll("TEL354", 20211688)))

	assert.NilErr(t, db.DeleteCourse("TEL354"))
	assert.Equal(t, 0, len(db.Courses()))
	assert.True(t, terrors.IsKeyNotExistsErr(db.DeleteCourse("TEL354")))
}

func TestAuthorize(t *testing.T) {
	db := newLab(t)

	assert.NilErr(t, db.Authorize(20211688, "web", "ssh"))
	assert.NilErr(t, db.Authorize(20211688, "web", "SSH"))
	assert.True(t, terrors.IsUnauthorizedErr(db.Authorize(20211688, "web", "dns")))
	assert.True(t, terrors.IsUnauthorizedErr(db.Authorize(20200001, "web", "ssh")))
	assert.True(t, terrors.IsUnauthorizedErr(db.Authorize(20211688, "db", "ssh")))

	assert.NilErr(t, db.AddCourse(Course{
		Code:     "TEL999",
		Status:   "FINALIZADO",
		Students: []int{20200001},
		Servers:  []CourseServer{{Name: "web", AllowedServices: []string{"ssh"}}},
	}))
	assert.True(t, terrors.IsUnauthorizedErr(db.Authorize(20200001, "web", "ssh")))
}

func TestResolve(t *testing.T) {
	db := newLab(t)

	st, srv, svc, err := db.Resolve(20211688, "web", "dns")
	assert.NilErr(t, err)
	assert.Equal(t, "Ana", st.Name)
	assert.Equal(t, "10.0.0.3", srv.IP)
	assert.Equal(t, "udp", svc.Protocol)

	_, _, _, err = db.Resolve(20211688, "web", "http")
	assert.True(t, terrors.IsKeyNotExistsErr(err))
	_, _, _, err = db.Resolve(1, "web", "ssh")
	assert.True(t, terrors.IsKeyNotExistsErr(err))
}
