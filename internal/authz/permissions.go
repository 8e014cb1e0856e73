package authz

// Permission labels known to the application. Labels are unique across the
// whole hierarchy; uniqueness is by convention, not enforced.
const (
	DoEverything = "Do Everything"

	ManageDepartments = "Manage Departments"
	CreateDepartments = "Create Departments"
	ReadDepartments   = "Read Departments"
	UpdateDepartments = "Update Departments"
	DeleteDepartments = "Delete Departments"

	ManageUsers = "Manage Users"
	CreateUsers = "Create Users"
	ReadUsers   = "Read Users"
	UpdateUsers = "Update Users"
	DeleteUsers = "Delete Users"

	ManageRoles = "Manage Roles"
	CreateRoles = "Create Roles"
	ReadRoles   = "Read Roles"
	UpdateRoles = "Update Roles"
	DeleteRoles = "Delete Roles"

	ReadReports = "Read Reports"
)
