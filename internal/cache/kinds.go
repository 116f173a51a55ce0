package cache

// Cache kinds used by the business services. Entity kinds are keyed by id and
// tenant, collection kinds by tenant and an optional narrowing scope.
//
//	operation                      evicts
//	user create                    companyUsers[tenant]
//	user update/roles/delete       users[id,tenant] + companyUsers[tenant]
//	role grant without a principal companyUsers (all)
//	project create                 companyProjects[tenant]
//	project update/delete          projects[id,tenant] + companyProjects[tenant]
//	task create                    projectTasks (all)
//	task update/delete             tasks[id,tenant] + projectTasks (all)
//	comment create                 taskComments (all)
//	comment update/delete          comments[id,tenant] + taskComments (all)
const (
	KindUsers           Kind = "users"
	KindCompanyUsers    Kind = "companyUsers"
	KindProjects        Kind = "projects"
	KindCompanyProjects Kind = "companyProjects"
	KindTasks           Kind = "tasks"
	KindProjectTasks    Kind = "projectTasks"
	KindComments        Kind = "comments"
	KindTaskComments    Kind = "taskComments"
)
