// internal/app/store/moodle/store.go
//
// Read-only access to an external Moodle Postgres database. Only the
// tables the dashboard needs are queried; nothing is ever written.
package moodle

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CourseRow is one joined category/course row from Moodle. CourseID is
// nil when a child category has no course attached (LEFT JOIN miss).
type CourseRow struct {
	CourseID           *int64
	CourseName         string
	ParentCategoryID   int64
	ParentCategoryName string
	ChildCategoryID    int64
	ChildCategoryName  string
	SortOrder          int64
	Visible            bool
	StartDate          *time.Time
	EndDate            *time.Time
	Created            time.Time
}

// User is the subset of a Moodle account the dashboard displays.
type User struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// Store reads from the Moodle database.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Moodle Store over an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Ping verifies the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const courseRowsQuery = `
SELECT
    c.id,
    c.fullname,
    parent_cat.id,
    parent_cat.name,
    child_cat.id,
    child_cat.name,
    c.sortorder,
    c.visible,
    c.startdate,
    c.enddate,
    c.timecreated
FROM mdl_course_categories parent_cat
JOIN mdl_course_categories child_cat ON child_cat.parent = parent_cat.id
LEFT JOIN mdl_course c ON c.category = child_cat.id
WHERE parent_cat.parent = 0`

const courseRowsOrder = `
ORDER BY parent_cat.sortorder, child_cat.sortorder, c.sortorder`

// FetchCourseRows returns the two-level category tree joined with
// courses, ordered by the three Moodle sort orders. A non-zero courseID
// restricts the result to that single course, pushed into the query as
// a bind parameter. Epoch second values of zero (and negatives) become
// nil start/end dates; a zero creation time falls back to the current
// time.
func (s *Store) FetchCourseRows(ctx context.Context, courseID int64) ([]CourseRow, error) {
	q := courseRowsQuery
	args := []any{}
	if courseID != 0 {
		q += " AND c.id = $1"
		args = append(args, courseID)
	}
	q += courseRowsOrder

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CourseRow
	for rows.Next() {
		var (
			r         CourseRow
			courseID  *int64
			fullname  *string
			sortOrder *int64
			visible   *int64
			startEp   *int64
			endEp     *int64
			createdEp *int64
		)
		if err := rows.Scan(
			&courseID, &fullname,
			&r.ParentCategoryID, &r.ParentCategoryName,
			&r.ChildCategoryID, &r.ChildCategoryName,
			&sortOrder, &visible, &startEp, &endEp, &createdEp,
		); err != nil {
			return nil, err
		}
		r.CourseID = courseID
		if fullname != nil {
			r.CourseName = *fullname
		}
		if sortOrder != nil {
			r.SortOrder = *sortOrder
		}
		if visible != nil {
			r.Visible = *visible != 0
		}
		r.StartDate = epochToTime(startEp)
		r.EndDate = epochToTime(endEp)
		if created := epochToTime(createdEp); created != nil {
			r.Created = *created
		} else {
			r.Created = time.Now().UTC()
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// StudentCount counts distinct users holding the student archetype in
// any course context.
func (s *Store) StudentCount(ctx context.Context) (int64, error) {
	const q = `
SELECT COUNT(DISTINCT ra.userid)
FROM mdl_role_assignments ra
JOIN mdl_role r ON r.id = ra.roleid
WHERE r.archetype = 'student'`

	var n int64
	if err := s.pool.QueryRow(ctx, q).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// EnrolledStudentIDs returns the ids of all users with an active
// enrolment, as a lookup set keyed by the Moodle user id rendered in
// decimal. Activity events carry the same rendering.
func (s *Store) EnrolledStudentIDs(ctx context.Context) (map[string]bool, error) {
	const q = `
SELECT DISTINCT ue.userid::text
FROM mdl_user_enrolments ue
WHERE ue.status = 0`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// GetUser looks up one Moodle account by id. Returns nil when absent.
func (s *Store) GetUser(ctx context.Context, userID int64) (*User, error) {
	const q = `
SELECT id, username, firstname, lastname
FROM mdl_user
WHERE id = $1 AND deleted = 0`

	var u User
	err := s.pool.QueryRow(ctx, q, userID).Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUsers looks up a batch of Moodle accounts, keyed by id.
func (s *Store) GetUsers(ctx context.Context, userIDs []int64) (map[int64]User, error) {
	if len(userIDs) == 0 {
		return map[int64]User{}, nil
	}
	const q = `
SELECT id, username, firstname, lastname
FROM mdl_user
WHERE id = ANY($1) AND deleted = 0`

	rows, err := s.pool.Query(ctx, q, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make(map[int64]User, len(userIDs))
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName); err != nil {
			return nil, err
		}
		users[u.ID] = u
	}
	return users, rows.Err()
}

// epochToTime converts Moodle epoch seconds to UTC time; zero or
// negative values mean "not set".
func epochToTime(epoch *int64) *time.Time {
	if epoch == nil || *epoch <= 0 {
		return nil
	}
	t := time.Unix(*epoch, 0).UTC()
	return &t
}
