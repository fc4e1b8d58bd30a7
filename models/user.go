package models

// Account kinds. Every user in the department is exactly one of these,
// stored in its own profile table.
const (
	KindStudent  = "Student"
	KindLecturer = "Lecturer"
)

// Table names for the two profile collections
const (
	StudentsTable  = "Students"
	LecturersTable = "Lecturers"
)

// UserIdentity is the resolved view of a user the messaging core works with:
// id, account kind and the display fields needed for notification titles.
type UserIdentity struct {
	ID         string `dynamodbav:"userId" json:"userId"`
	Kind       string `dynamodbav:"role" json:"role"`
	FullName   string `dynamodbav:"fullname" json:"fullname"`
	ProfilePic string `dynamodbav:"profilePic" json:"profilePic"`
}

// StudentProfile is the full student record (profile tables are owned by the
// registration flow; the core only reads them).
type StudentProfile struct {
	UserID     string `dynamodbav:"userId" json:"userId"`
	RegNo      string `dynamodbav:"regNo" json:"regNo"`
	FullName   string `dynamodbav:"fullname" json:"fullname"`
	ProfilePic string `dynamodbav:"profilePic" json:"profilePic"`
	Email      string `dynamodbav:"email" json:"email"`
	Level      string `dynamodbav:"level" json:"level"`
	Role       string `dynamodbav:"role" json:"role"`
	CreatedAt  string `dynamodbav:"createdAt" json:"createdAt"`
}

// LecturerProfile is the full lecturer record.
type LecturerProfile struct {
	UserID     string `dynamodbav:"userId" json:"userId"`
	StaffID    string `dynamodbav:"staffId" json:"staffId"`
	FullName   string `dynamodbav:"fullname" json:"fullname"`
	ProfilePic string `dynamodbav:"profilePic" json:"profilePic"`
	Email      string `dynamodbav:"email" json:"email"`
	Role       string `dynamodbav:"role" json:"role"`
	CreatedAt  string `dynamodbav:"createdAt" json:"createdAt"`
}

// Identity converts a student profile to its identity view.
func (p StudentProfile) Identity() UserIdentity {
	return UserIdentity{ID: p.UserID, Kind: KindStudent, FullName: p.FullName, ProfilePic: p.ProfilePic}
}

// Identity converts a lecturer profile to its identity view.
func (p LecturerProfile) Identity() UserIdentity {
	return UserIdentity{ID: p.UserID, Kind: KindLecturer, FullName: p.FullName, ProfilePic: p.ProfilePic}
}
