package model

import "sort"

// PermissionSpec 权限的全局基础定义：各角色默认启用情况、
// 只读角色集合，以及可用范围（部分权限仅限根账户角色）
type PermissionSpec struct {
	Name        string
	Label       string
	TrueFor     []string // 默认启用的角色
	ReadonlyFor []string // 只读角色：不可覆盖，解析结果恒为 locked
	RootOnly    bool     // 仅根账户角色可用
}

func (p *PermissionSpec) DefaultEnabled(role string) bool {
	return containsRole(p.TrueFor, role)
}

func (p *PermissionSpec) Readonly(role string) bool {
	return containsRole(p.ReadonlyFor, role)
}

// AvailableAt 可用性判定：RootOnly 权限对子账户角色不可用
func (p *PermissionSpec) AvailableAt(account *Account) bool {
	if !p.RootOnly {
		return true
	}
	return account.IsRoot()
}

func containsRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

var adminOnly = []string{RoleAccountAdmin}
var staff = []string{RoleAccountAdmin, RoleTeacherEnrollment, RoleTaEnrollment, RoleDesignerEnrollment}
var everyone = []string{
	RoleAccountAdmin, RoleTeacherEnrollment, RoleTaEnrollment,
	RoleStudentEnrollment, RoleObserverEnrollment, RoleDesignerEnrollment,
}

var permissionRegistry = map[string]*PermissionSpec{
	"become_user":                   {Label: "Become other users", TrueFor: adminOnly, RootOnly: true},
	"site_admin":                    {Label: "Use the Site Admin section", TrueFor: nil, RootOnly: true},
	"manage_account_memberships":    {Label: "Add/remove other admins for the account", TrueFor: adminOnly},
	"manage_account_settings":       {Label: "Manage account-level settings", TrueFor: adminOnly},
	"manage_role_overrides":         {Label: "Manage permissions", TrueFor: adminOnly},
	"manage_courses":                {Label: "Manage ( add / edit / delete ) courses", TrueFor: adminOnly},
	"manage_students":               {Label: "Add/remove students for the course", TrueFor: staff},
	"manage_assignments":            {Label: "Manage ( add / edit / delete ) assignments and quizzes", TrueFor: staff},
	"manage_grades":                 {Label: "Edit grades", TrueFor: []string{RoleAccountAdmin, RoleTeacherEnrollment, RoleTaEnrollment}},
	"manage_content":                {Label: "Manage all other course content", TrueFor: staff},
	"manage_files":                  {Label: "Manage ( add / edit / delete ) course files", TrueFor: staff},
	"manage_wiki":                   {Label: "Manage wiki ( add / edit / delete pages )", TrueFor: staff},
	"manage_sections":               {Label: "Manage ( add / edit / delete ) course sections", TrueFor: staff},
	"manage_user_logins":            {Label: "Modify login details for users", TrueFor: adminOnly},
	"moderate_forum":                {Label: "Moderate discussions", TrueFor: staff},
	"post_to_forum":                 {Label: "Post to discussions", TrueFor: everyone},
	"read_forum":                    {Label: "View discussions", TrueFor: everyone, ReadonlyFor: everyone[1:]},
	"read_course_content":           {Label: "View course content", TrueFor: everyone},
	"read_course_list":              {Label: "View the list of courses", TrueFor: adminOnly},
	"read_question_banks":           {Label: "View and link to question banks", TrueFor: staff},
	"read_reports":                  {Label: "View usage reports for the course", TrueFor: staff},
	"read_roster":                   {Label: "See the list of users", TrueFor: everyone},
	"send_messages":                 {Label: "Send messages to course members", TrueFor: everyone},
	"view_all_grades":               {Label: "View all grades", TrueFor: []string{RoleAccountAdmin, RoleTeacherEnrollment, RoleTaEnrollment}},
	"view_group_pages":              {Label: "View the group pages of all student groups", TrueFor: staff},
	"view_statistics":               {Label: "View statistics", TrueFor: adminOnly},
	"comment_on_others_submissions": {Label: "View all students' submissions and make comments on them", TrueFor: staff},
	"manage_calendar":               {Label: "Add, edit and delete events on the course calendar", TrueFor: staff},
}

func init() {
	for name, spec := range permissionRegistry {
		spec.Name = name
	}
}

// LookupPermission 按名称查找权限定义，未注册的权限返回 nil
func LookupPermission(name string) *PermissionSpec {
	return permissionRegistry[name]
}

// PermissionNames 全部权限名，字典序
func PermissionNames() []string {
	names := make([]string, 0, len(permissionRegistry))
	for name := range permissionRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AvailablePermissions 对给定账户可用的权限名，字典序；
// 不可用的权限整体省略，而不是以 disabled 形式返回
func AvailablePermissions(account *Account) []string {
	names := make([]string, 0, len(permissionRegistry))
	for name, spec := range permissionRegistry {
		if spec.AvailableAt(account) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
