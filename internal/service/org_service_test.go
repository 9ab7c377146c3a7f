package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-hours-api/internal/dto"
	"github.com/noah-isme/uni-hours-api/internal/models"
	"github.com/noah-isme/uni-hours-api/internal/repository"
)

// orgRepoStub keeps every hierarchy level in memory.
type orgRepoStub struct {
	departments map[string]*models.Department
	tracks      map[string]*models.Track
	levels      map[string]*models.Level
	semesters   map[string]*models.Semester
	units       map[string]*models.CourseUnit
	elements    map[string]*models.CourseElement
}

func newOrgRepoStub() *orgRepoStub {
	return &orgRepoStub{
		departments: make(map[string]*models.Department),
		tracks:      make(map[string]*models.Track),
		levels:      make(map[string]*models.Level),
		semesters:   make(map[string]*models.Semester),
		units:       make(map[string]*models.CourseUnit),
		elements:    make(map[string]*models.CourseElement),
	}
}

func (r *orgRepoStub) CreateDepartment(ctx context.Context, d *models.Department) error {
	d.ID = uuid.NewString()
	r.departments[d.ID] = d
	return nil
}

func (r *orgRepoStub) GetDepartment(ctx context.Context, id string) (*models.Department, error) {
	if d, ok := r.departments[id]; ok {
		return d, nil
	}
	return nil, sql.ErrNoRows
}

func (r *orgRepoStub) ListDepartments(ctx context.Context) ([]models.Department, error) {
	out := make([]models.Department, 0, len(r.departments))
	for _, d := range r.departments {
		out = append(out, *d)
	}
	return out, nil
}

func (r *orgRepoStub) UpdateDepartment(ctx context.Context, d *models.Department) error {
	if _, ok := r.departments[d.ID]; !ok {
		return sql.ErrNoRows
	}
	r.departments[d.ID] = d
	return nil
}

func (r *orgRepoStub) DeleteDepartment(ctx context.Context, id string) error {
	if _, ok := r.departments[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.departments, id)
	return nil
}

func (r *orgRepoStub) CreateTrack(ctx context.Context, t *models.Track) error {
	t.ID = uuid.NewString()
	r.tracks[t.ID] = t
	return nil
}

func (r *orgRepoStub) GetTrack(ctx context.Context, id string) (*models.Track, error) {
	if t, ok := r.tracks[id]; ok {
		return t, nil
	}
	return nil, sql.ErrNoRows
}

func (r *orgRepoStub) ListTracks(ctx context.Context, departmentID string) ([]models.Track, error) {
	out := make([]models.Track, 0, len(r.tracks))
	for _, t := range r.tracks {
		if departmentID == "" || t.DepartmentID == departmentID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *orgRepoStub) UpdateTrack(ctx context.Context, t *models.Track) error {
	if _, ok := r.tracks[t.ID]; !ok {
		return sql.ErrNoRows
	}
	r.tracks[t.ID] = t
	return nil
}

func (r *orgRepoStub) DeleteTrack(ctx context.Context, id string) error {
	if _, ok := r.tracks[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.tracks, id)
	return nil
}

func (r *orgRepoStub) CreateLevel(ctx context.Context, l *models.Level) error {
	l.ID = uuid.NewString()
	r.levels[l.ID] = l
	return nil
}

func (r *orgRepoStub) GetLevel(ctx context.Context, id string) (*models.Level, error) {
	if l, ok := r.levels[id]; ok {
		return l, nil
	}
	return nil, sql.ErrNoRows
}

func (r *orgRepoStub) ListLevels(ctx context.Context, trackID string) ([]models.Level, error) {
	out := make([]models.Level, 0, len(r.levels))
	for _, l := range r.levels {
		if trackID == "" || l.TrackID == trackID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *orgRepoStub) UpdateLevel(ctx context.Context, l *models.Level) error {
	if _, ok := r.levels[l.ID]; !ok {
		return sql.ErrNoRows
	}
	r.levels[l.ID] = l
	return nil
}

func (r *orgRepoStub) DeleteLevel(ctx context.Context, id string) error {
	if _, ok := r.levels[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.levels, id)
	return nil
}

func (r *orgRepoStub) CreateSemester(ctx context.Context, s *models.Semester) error {
	s.ID = uuid.NewString()
	r.semesters[s.ID] = s
	return nil
}

func (r *orgRepoStub) GetSemester(ctx context.Context, id string) (*models.Semester, error) {
	if s, ok := r.semesters[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (r *orgRepoStub) ListSemesters(ctx context.Context, levelID string) ([]models.Semester, error) {
	out := make([]models.Semester, 0, len(r.semesters))
	for _, s := range r.semesters {
		if levelID == "" || s.LevelID == levelID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *orgRepoStub) UpdateSemester(ctx context.Context, s *models.Semester) error {
	if _, ok := r.semesters[s.ID]; !ok {
		return sql.ErrNoRows
	}
	r.semesters[s.ID] = s
	return nil
}

func (r *orgRepoStub) DeleteSemester(ctx context.Context, id string) error {
	if _, ok := r.semesters[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.semesters, id)
	return nil
}

func (r *orgRepoStub) CreateCourseUnit(ctx context.Context, u *models.CourseUnit) error {
	u.ID = uuid.NewString()
	r.units[u.ID] = u
	return nil
}

func (r *orgRepoStub) GetCourseUnit(ctx context.Context, id string) (*models.CourseUnit, error) {
	if u, ok := r.units[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (r *orgRepoStub) ListCourseUnits(ctx context.Context, semesterID string) ([]models.CourseUnit, error) {
	out := make([]models.CourseUnit, 0, len(r.units))
	for _, u := range r.units {
		if semesterID == "" || u.SemesterID == semesterID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *orgRepoStub) UpdateCourseUnit(ctx context.Context, u *models.CourseUnit) error {
	if _, ok := r.units[u.ID]; !ok {
		return sql.ErrNoRows
	}
	r.units[u.ID] = u
	return nil
}

func (r *orgRepoStub) DeleteCourseUnit(ctx context.Context, id string) error {
	if _, ok := r.units[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.units, id)
	return nil
}

func (r *orgRepoStub) CreateCourseElement(ctx context.Context, e *models.CourseElement) error {
	e.ID = uuid.NewString()
	r.elements[e.ID] = e
	return nil
}

func (r *orgRepoStub) GetCourseElement(ctx context.Context, id string) (*models.CourseElement, error) {
	if e, ok := r.elements[id]; ok {
		return e, nil
	}
	return nil, sql.ErrNoRows
}

func (r *orgRepoStub) ListCourseElements(ctx context.Context, courseUnitID string) ([]models.CourseElement, error) {
	out := make([]models.CourseElement, 0, len(r.elements))
	for _, e := range r.elements {
		if courseUnitID == "" || e.CourseUnitID == courseUnitID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *orgRepoStub) UpdateCourseElement(ctx context.Context, e *models.CourseElement) error {
	if _, ok := r.elements[e.ID]; !ok {
		return sql.ErrNoRows
	}
	r.elements[e.ID] = e
	return nil
}

func (r *orgRepoStub) DeleteCourseElement(ctx context.Context, id string) error {
	if _, ok := r.elements[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.elements, id)
	return nil
}

func (r *orgRepoStub) ResolvePath(ctx context.Context, courseElementID string) (*repository.CoursePathRow, error) {
	element, ok := r.elements[courseElementID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	unit := r.units[element.CourseUnitID]
	semester := r.semesters[unit.SemesterID]
	level := r.levels[semester.LevelID]
	track := r.tracks[level.TrackID]
	department := r.departments[track.DepartmentID]
	return &repository.CoursePathRow{
		CourseElementID: element.ID,
		CourseUnitID:    unit.ID,
		SemesterID:      semester.ID,
		LevelID:         level.ID,
		TrackID:         track.ID,
		DepartmentID:    department.ID,
		ElementName:     element.Name,
		DepartmentName:  department.Name,
	}, nil
}

func TestOrgServiceBuildsFullHierarchy(t *testing.T) {
	svc := NewOrgService(newOrgRepoStub(), nil)
	ctx := context.Background()

	department, err := svc.CreateDepartment(ctx, dto.CreateDepartmentRequest{Name: "Informatique"})
	require.NoError(t, err)

	track, err := svc.CreateTrack(ctx, dto.CreateTrackRequest{Name: "Génie Logiciel", DepartmentID: department.ID})
	require.NoError(t, err)

	level, err := svc.CreateLevel(ctx, dto.CreateLevelRequest{Name: "L3", TrackID: track.ID})
	require.NoError(t, err)

	semester, err := svc.CreateSemester(ctx, dto.CreateSemesterRequest{Name: "S5", LevelID: level.ID})
	require.NoError(t, err)

	unit, err := svc.CreateCourseUnit(ctx, dto.CreateCourseUnitRequest{Name: "UE Programmation", SemesterID: semester.ID})
	require.NoError(t, err)

	element, err := svc.CreateCourseElement(ctx, dto.CreateCourseElementRequest{Name: "Algorithmique", CourseUnitID: unit.ID})
	require.NoError(t, err)
	require.NotEmpty(t, element.ID)
}

func TestOrgServiceRejectsMissingParent(t *testing.T) {
	svc := NewOrgService(newOrgRepoStub(), nil)

	_, err := svc.CreateTrack(context.Background(), dto.CreateTrackRequest{Name: "Orpheline", DepartmentID: "missing"})
	require.Error(t, err)

	_, err = svc.CreateCourseElement(context.Background(), dto.CreateCourseElementRequest{Name: "EC", CourseUnitID: "missing"})
	require.Error(t, err)
}

func TestOrgServiceUpdateAndDelete(t *testing.T) {
	repo := newOrgRepoStub()
	svc := NewOrgService(repo, nil)
	ctx := context.Background()

	department, err := svc.CreateDepartment(ctx, dto.CreateDepartmentRequest{Name: "Mathématiques"})
	require.NoError(t, err)

	renamed, err := svc.UpdateDepartment(ctx, department.ID, dto.UpdateDepartmentRequest{Name: "Maths Appliquées"})
	require.NoError(t, err)
	require.Equal(t, "Maths Appliquées", renamed.Name)

	require.NoError(t, svc.DeleteDepartment(ctx, department.ID))
	require.Error(t, svc.DeleteDepartment(ctx, department.ID))
}
