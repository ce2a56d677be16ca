package models

import (
	"bytes"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/projecteru2/labflow/internal/network/types"
)

// Document is the yaml layout of a records file.
type Document struct {
	Students []Student `yaml:"students"`
	Courses  []Course  `yaml:"courses"`
	Servers  []Server  `yaml:"servers"`
}

// legacyDocument is the layout written by the first lab tool, with spanish keys.
type legacyDocument struct {
	Alumnos []struct {
		Nombre string `yaml:"nombre"`
		Codigo int    `yaml:"codigo"`
		MAC    string `yaml:"mac"`
	} `yaml:"alumnos"`
	Cursos []struct {
		Codigo     string `yaml:"codigo"`
		Estado     string `yaml:"estado"`
		Nombre     string `yaml:"nombre"`
		Alumnos    []int  `yaml:"alumnos"`
		Servidores []struct {
			Nombre              string   `yaml:"nombre"`
			ServiciosPermitidos []string `yaml:"servicios_permitidos"`
		} `yaml:"servidores"`
	} `yaml:"cursos"`
	Servidores []struct {
		Nombre    string          `yaml:"nombre"`
		IP        string          `yaml:"ip"`
		Servicios []legacyService `yaml:"servicios"`
	} `yaml:"servidores"`
}

type legacyService struct {
	Nombre    string `yaml:"nombre"`
	Protocolo string `yaml:"protocolo"`
	Puerto    int    `yaml:"puerto"`
}

func (l *legacyDocument) empty() bool {
	return len(l.Alumnos) == 0 && len(l.Cursos) == 0 && len(l.Servidores) == 0
}

func (l *legacyDocument) convert() *Document {
	var doc = &Document{}
	for _, a := range l.Alumnos {
		doc.Students = append(doc.Students, Student{Code: a.Codigo, Name: a.Nombre, MAC: a.MAC})
	}
	for _, c := range l.Cursos {
		var course = Course{Code: c.Codigo, Name: c.Nombre, Status: c.Estado, Students: c.Alumnos}
		for _, s := range c.Servidores {
			course.Servers = append(course.Servers, CourseServer{Name: s.Nombre, AllowedServices: s.ServiciosPermitidos})
		}
		doc.Courses = append(doc.Courses, course)
	}
	for _, s := range l.Servidores {
		doc.Servers = append(doc.Servers, Server{
			Name: s.Nombre,
			IP:   s.IP,
			Services: lo.Map(s.Servicios, func(svc legacyService, _ int) types.ServiceSpec {
				return types.ServiceSpec{Name: svc.Nombre, Protocol: svc.Protocolo, Port: svc.Puerto}
			}),
		})
	}
	return doc
}

// DecodeDocument reads either layout.
func DecodeDocument(buf []byte) (*Document, error) {
	var doc = &Document{}
	if err := yaml.Unmarshal(buf, doc); err != nil {
		return nil, errors.Wrap(err, "")
	}
	if len(doc.Students) > 0 || len(doc.Courses) > 0 || len(doc.Servers) > 0 {
		return doc, nil
	}

	var legacy legacyDocument
	if err := yaml.Unmarshal(buf, &legacy); err != nil {
		return nil, errors.Wrap(err, "")
	}
	if legacy.empty() {
		return doc, nil
	}
	return legacy.convert(), nil
}

// EncodeDocument .
func EncodeDocument(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	var enc = yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return buf.Bytes(), nil
}

// Import replaces the content of db with a records file.
func (db *Database) Import(path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "")
	}
	doc, err := DecodeDocument(buf)
	if err != nil {
		return errors.Wrapf(err, "decode %s", path)
	}
	return errors.Wrapf(db.Replace(doc), "import %s", path)
}

// Export writes db to a records file.
func (db *Database) Export(path string) error {
	buf, err := EncodeDocument(db.Document())
	if err != nil {
		return err
	}
	return errors.Wrap(os.WriteFile(path, buf, 0644), "") //nolint:gosec
}
