package tasklist

import "github.com/Joseda-hg/supertask/internal/model"

// View is the list state of one screen: the loaded tasks plus the active
// filters, sort key and page.
type View struct {
	tasks    []model.TaskView
	filters  model.TaskFilters
	sortKey  SortKey
	page     int
	pageSize int
}

func NewView(pageSize int) *View {
	if pageSize <= 0 {
		pageSize = PageSize
	}
	return &View{sortKey: SortDueDate, page: 1, pageSize: pageSize}
}

func (v *View) SetTasks(tasks []model.TaskView) {
	v.tasks = tasks
	v.clamp()
}

func (v *View) Tasks() []model.TaskView {
	return v.tasks
}

// SetFilters replaces the filters. Any change sends the view back to page 1.
func (v *View) SetFilters(filters model.TaskFilters) {
	if filters == v.filters {
		return
	}
	v.filters = filters
	v.page = 1
}

func (v *View) Filters() model.TaskFilters {
	return v.filters
}

func (v *View) SetSort(key SortKey) {
	v.sortKey = key
}

func (v *View) SortKey() SortKey {
	return v.sortKey
}

// NextSort advances to the following sort key and returns it.
func (v *View) NextSort() SortKey {
	for i, key := range SortKeys {
		if key == v.sortKey {
			v.sortKey = SortKeys[(i+1)%len(SortKeys)]
			return v.sortKey
		}
	}
	v.sortKey = SortKeys[0]
	return v.sortKey
}

func (v *View) Page() int {
	return v.page
}

func (v *View) SetPage(page int) {
	v.page = page
	v.clamp()
}

func (v *View) NextPage() {
	v.SetPage(v.page + 1)
}

func (v *View) PrevPage() {
	v.SetPage(v.page - 1)
}

// Visible is every task passing the filters, in sort order.
func (v *View) Visible() []model.TaskView {
	return Sort(Filter(v.tasks, v.filters), v.sortKey)
}

func (v *View) TotalPages() int {
	return TotalPages(len(Filter(v.tasks, v.filters)), v.pageSize)
}

// Rows is the current page of Visible.
func (v *View) Rows() []model.TaskView {
	v.clamp()
	return Paginate(v.Visible(), v.page, v.pageSize)
}

func (v *View) clamp() {
	total := max(v.TotalPages(), 1)
	if v.page > total {
		v.page = total
	}
	if v.page < 1 {
		v.page = 1
	}
}
