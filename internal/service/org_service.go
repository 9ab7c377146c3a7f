package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-hours-api/internal/dto"
	"github.com/noah-isme/uni-hours-api/internal/models"
	"github.com/noah-isme/uni-hours-api/internal/repository"
	appErrors "github.com/noah-isme/uni-hours-api/pkg/errors"
)

type orgStore interface {
	CreateDepartment(ctx context.Context, d *models.Department) error
	GetDepartment(ctx context.Context, id string) (*models.Department, error)
	ListDepartments(ctx context.Context) ([]models.Department, error)
	UpdateDepartment(ctx context.Context, d *models.Department) error
	DeleteDepartment(ctx context.Context, id string) error

	CreateTrack(ctx context.Context, t *models.Track) error
	GetTrack(ctx context.Context, id string) (*models.Track, error)
	ListTracks(ctx context.Context, departmentID string) ([]models.Track, error)
	UpdateTrack(ctx context.Context, t *models.Track) error
	DeleteTrack(ctx context.Context, id string) error

	CreateLevel(ctx context.Context, l *models.Level) error
	GetLevel(ctx context.Context, id string) (*models.Level, error)
	ListLevels(ctx context.Context, trackID string) ([]models.Level, error)
	UpdateLevel(ctx context.Context, l *models.Level) error
	DeleteLevel(ctx context.Context, id string) error

	CreateSemester(ctx context.Context, s *models.Semester) error
	GetSemester(ctx context.Context, id string) (*models.Semester, error)
	ListSemesters(ctx context.Context, levelID string) ([]models.Semester, error)
	UpdateSemester(ctx context.Context, s *models.Semester) error
	DeleteSemester(ctx context.Context, id string) error

	CreateCourseUnit(ctx context.Context, u *models.CourseUnit) error
	GetCourseUnit(ctx context.Context, id string) (*models.CourseUnit, error)
	ListCourseUnits(ctx context.Context, semesterID string) ([]models.CourseUnit, error)
	UpdateCourseUnit(ctx context.Context, u *models.CourseUnit) error
	DeleteCourseUnit(ctx context.Context, id string) error

	CreateCourseElement(ctx context.Context, e *models.CourseElement) error
	GetCourseElement(ctx context.Context, id string) (*models.CourseElement, error)
	ListCourseElements(ctx context.Context, courseUnitID string) ([]models.CourseElement, error)
	UpdateCourseElement(ctx context.Context, e *models.CourseElement) error
	DeleteCourseElement(ctx context.Context, id string) error

	ResolvePath(ctx context.Context, courseElementID string) (*repository.CoursePathRow, error)
}

// OrgService manages the organizational hierarchy. Every create checks that
// the named parent exists, so the containment chain can never dangle.
type OrgService struct {
	repo   orgStore
	logger *zap.Logger
}

// NewOrgService constructs the service.
func NewOrgService(repo orgStore, logger *zap.Logger) *OrgService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrgService{repo: repo, logger: logger}
}

// CreateDepartment adds a hierarchy root.
func (s *OrgService) CreateDepartment(ctx context.Context, req dto.CreateDepartmentRequest) (*models.Department, error) {
	department := &models.Department{Name: strings.TrimSpace(req.Name)}
	if err := s.repo.CreateDepartment(ctx, department); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create department")
	}
	return department, nil
}

// ListDepartments returns all departments.
func (s *OrgService) ListDepartments(ctx context.Context) ([]models.Department, error) {
	departments, err := s.repo.ListDepartments(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list departments")
	}
	return departments, nil
}

// GetDepartment returns one department.
func (s *OrgService) GetDepartment(ctx context.Context, id string) (*models.Department, error) {
	department, err := s.repo.GetDepartment(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, "failed to load department")
	}
	return department, nil
}

// UpdateDepartment renames a department.
func (s *OrgService) UpdateDepartment(ctx context.Context, id string, req dto.UpdateDepartmentRequest) (*models.Department, error) {
	department, err := s.repo.GetDepartment(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, "failed to load department")
	}
	department.Name = strings.TrimSpace(req.Name)
	if err := s.repo.UpdateDepartment(ctx, department); err != nil {
		return nil, s.mapLookupError(err, "failed to update department")
	}
	return department, nil
}

// DeleteDepartment removes a department.
func (s *OrgService) DeleteDepartment(ctx context.Context, id string) error {
	if err := s.repo.DeleteDepartment(ctx, id); err != nil {
		return s.mapLookupError(err, "failed to delete department")
	}
	return nil
}

// CreateTrack adds a track under an existing department.
func (s *OrgService) CreateTrack(ctx context.Context, req dto.CreateTrackRequest) (*models.Track, error) {
	if _, err := s.repo.GetDepartment(ctx, req.DepartmentID); err != nil {
		return nil, s.mapParentError(err, "department does not exist")
	}
	track := &models.Track{Name: strings.TrimSpace(req.Name), DepartmentID: req.DepartmentID}
	if err := s.repo.CreateTrack(ctx, track); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create track")
	}
	return track, nil
}

// ListTracks returns tracks, optionally scoped to a department.
func (s *OrgService) ListTracks(ctx context.Context, departmentID string) ([]models.Track, error) {
	tracks, err := s.repo.ListTracks(ctx, departmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tracks")
	}
	return tracks, nil
}

// UpdateTrack renames a track and optionally moves it to another department.
func (s *OrgService) UpdateTrack(ctx context.Context, id string, req dto.UpdateOrgNodeRequest) (*models.Track, error) {
	track, err := s.repo.GetTrack(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, "failed to load track")
	}
	track.Name = strings.TrimSpace(req.Name)
	if req.ParentID != nil {
		if _, err := s.repo.GetDepartment(ctx, *req.ParentID); err != nil {
			return nil, s.mapParentError(err, "department does not exist")
		}
		track.DepartmentID = *req.ParentID
	}
	if err := s.repo.UpdateTrack(ctx, track); err != nil {
		return nil, s.mapLookupError(err, "failed to update track")
	}
	return track, nil
}

// DeleteTrack removes a track.
func (s *OrgService) DeleteTrack(ctx context.Context, id string) error {
	if err := s.repo.DeleteTrack(ctx, id); err != nil {
		return s.mapLookupError(err, "failed to delete track")
	}
	return nil
}

// CreateLevel adds a level under an existing track.
func (s *OrgService) CreateLevel(ctx context.Context, req dto.CreateLevelRequest) (*models.Level, error) {
	if _, err := s.repo.GetTrack(ctx, req.TrackID); err != nil {
		return nil, s.mapParentError(err, "track does not exist")
	}
	level := &models.Level{Name: strings.TrimSpace(req.Name), TrackID: req.TrackID}
	if err := s.repo.CreateLevel(ctx, level); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create level")
	}
	return level, nil
}

// ListLevels returns levels, optionally scoped to a track.
func (s *OrgService) ListLevels(ctx context.Context, trackID string) ([]models.Level, error) {
	levels, err := s.repo.ListLevels(ctx, trackID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list levels")
	}
	return levels, nil
}

// UpdateLevel renames a level and optionally moves it to another track.
func (s *OrgService) UpdateLevel(ctx context.Context, id string, req dto.UpdateOrgNodeRequest) (*models.Level, error) {
	level, err := s.repo.GetLevel(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, "failed to load level")
	}
	level.Name = strings.TrimSpace(req.Name)
	if req.ParentID != nil {
		if _, err := s.repo.GetTrack(ctx, *req.ParentID); err != nil {
			return nil, s.mapParentError(err, "track does not exist")
		}
		level.TrackID = *req.ParentID
	}
	if err := s.repo.UpdateLevel(ctx, level); err != nil {
		return nil, s.mapLookupError(err, "failed to update level")
	}
	return level, nil
}

// DeleteLevel removes a level.
func (s *OrgService) DeleteLevel(ctx context.Context, id string) error {
	if err := s.repo.DeleteLevel(ctx, id); err != nil {
		return s.mapLookupError(err, "failed to delete level")
	}
	return nil
}

// CreateSemester adds a semester under an existing level.
func (s *OrgService) CreateSemester(ctx context.Context, req dto.CreateSemesterRequest) (*models.Semester, error) {
	if _, err := s.repo.GetLevel(ctx, req.LevelID); err != nil {
		return nil, s.mapParentError(err, "level does not exist")
	}
	semester := &models.Semester{Name: strings.TrimSpace(req.Name), LevelID: req.LevelID}
	if err := s.repo.CreateSemester(ctx, semester); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create semester")
	}
	return semester, nil
}

// ListSemesters returns semesters, optionally scoped to a level.
func (s *OrgService) ListSemesters(ctx context.Context, levelID string) ([]models.Semester, error) {
	semesters, err := s.repo.ListSemesters(ctx, levelID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list semesters")
	}
	return semesters, nil
}

// UpdateSemester renames a semester and optionally moves it to another level.
func (s *OrgService) UpdateSemester(ctx context.Context, id string, req dto.UpdateOrgNodeRequest) (*models.Semester, error) {
	semester, err := s.repo.GetSemester(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, "failed to load semester")
	}
	semester.Name = strings.TrimSpace(req.Name)
	if req.ParentID != nil {
		if _, err := s.repo.GetLevel(ctx, *req.ParentID); err != nil {
			return nil, s.mapParentError(err, "level does not exist")
		}
		semester.LevelID = *req.ParentID
	}
	if err := s.repo.UpdateSemester(ctx, semester); err != nil {
		return nil, s.mapLookupError(err, "failed to update semester")
	}
	return semester, nil
}

// DeleteSemester removes a semester.
func (s *OrgService) DeleteSemester(ctx context.Context, id string) error {
	if err := s.repo.DeleteSemester(ctx, id); err != nil {
		return s.mapLookupError(err, "failed to delete semester")
	}
	return nil
}

// CreateCourseUnit adds a course unit under an existing semester.
func (s *OrgService) CreateCourseUnit(ctx context.Context, req dto.CreateCourseUnitRequest) (*models.CourseUnit, error) {
	if _, err := s.repo.GetSemester(ctx, req.SemesterID); err != nil {
		return nil, s.mapParentError(err, "semester does not exist")
	}
	unit := &models.CourseUnit{Name: strings.TrimSpace(req.Name), SemesterID: req.SemesterID}
	if err := s.repo.CreateCourseUnit(ctx, unit); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course unit")
	}
	return unit, nil
}

// ListCourseUnits returns course units, optionally scoped to a semester.
func (s *OrgService) ListCourseUnits(ctx context.Context, semesterID string) ([]models.CourseUnit, error) {
	units, err := s.repo.ListCourseUnits(ctx, semesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list course units")
	}
	return units, nil
}

// UpdateCourseUnit renames a course unit and optionally moves it.
func (s *OrgService) UpdateCourseUnit(ctx context.Context, id string, req dto.UpdateOrgNodeRequest) (*models.CourseUnit, error) {
	unit, err := s.repo.GetCourseUnit(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, "failed to load course unit")
	}
	unit.Name = strings.TrimSpace(req.Name)
	if req.ParentID != nil {
		if _, err := s.repo.GetSemester(ctx, *req.ParentID); err != nil {
			return nil, s.mapParentError(err, "semester does not exist")
		}
		unit.SemesterID = *req.ParentID
	}
	if err := s.repo.UpdateCourseUnit(ctx, unit); err != nil {
		return nil, s.mapLookupError(err, "failed to update course unit")
	}
	return unit, nil
}

// DeleteCourseUnit removes a course unit.
func (s *OrgService) DeleteCourseUnit(ctx context.Context, id string) error {
	if err := s.repo.DeleteCourseUnit(ctx, id); err != nil {
		return s.mapLookupError(err, "failed to delete course unit")
	}
	return nil
}

// CreateCourseElement adds a course element under an existing course unit.
func (s *OrgService) CreateCourseElement(ctx context.Context, req dto.CreateCourseElementRequest) (*models.CourseElement, error) {
	if _, err := s.repo.GetCourseUnit(ctx, req.CourseUnitID); err != nil {
		return nil, s.mapParentError(err, "course unit does not exist")
	}
	element := &models.CourseElement{Name: strings.TrimSpace(req.Name), CourseUnitID: req.CourseUnitID}
	if err := s.repo.CreateCourseElement(ctx, element); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course element")
	}
	return element, nil
}

// ListCourseElements returns course elements, optionally scoped to a unit.
func (s *OrgService) ListCourseElements(ctx context.Context, courseUnitID string) ([]models.CourseElement, error) {
	elements, err := s.repo.ListCourseElements(ctx, courseUnitID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list course elements")
	}
	return elements, nil
}

// UpdateCourseElement renames a course element and optionally moves it.
func (s *OrgService) UpdateCourseElement(ctx context.Context, id string, req dto.UpdateOrgNodeRequest) (*models.CourseElement, error) {
	element, err := s.repo.GetCourseElement(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, "failed to load course element")
	}
	element.Name = strings.TrimSpace(req.Name)
	if req.ParentID != nil {
		if _, err := s.repo.GetCourseUnit(ctx, *req.ParentID); err != nil {
			return nil, s.mapParentError(err, "course unit does not exist")
		}
		element.CourseUnitID = *req.ParentID
	}
	if err := s.repo.UpdateCourseElement(ctx, element); err != nil {
		return nil, s.mapLookupError(err, "failed to update course element")
	}
	return element, nil
}

// DeleteCourseElement removes a course element.
func (s *OrgService) DeleteCourseElement(ctx context.Context, id string) error {
	if err := s.repo.DeleteCourseElement(ctx, id); err != nil {
		return s.mapLookupError(err, "failed to delete course element")
	}
	return nil
}

func (s *OrgService) mapLookupError(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.ErrNotFound
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func (s *OrgService) mapParentError(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrValidation, message)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
