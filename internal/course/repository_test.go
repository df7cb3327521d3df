package course

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCSV = `Название,Описание,Цена,Длительность
Python Programming,Основы Python для начинающих,15000,40
Web Development,Верстка и создание современных сайтов,20000,60
Data Science,Анализ данных и машинное обучение,25000,80
Python для анализа данных,Pandas и NumPy на практике,18000,36
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "courses.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func loadSample(t *testing.T) *Repository {
	t.Helper()
	repo, err := Load(writeCSV(t, sampleCSV))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return repo
}

func TestLoad(t *testing.T) {
	repo := loadSample(t)
	if repo.Len() != 4 {
		t.Errorf("Len() = %d, want 4", repo.Len())
	}
}

func TestLoad_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "invalid price",
			content: "Название,Описание,Цена,Длительность\nPython,desc,дорого,40\n",
		},
		{
			name:    "invalid duration",
			content: "Название,Описание,Цена,Длительность\nPython,desc,100,долго\n",
		},
		{
			name:    "empty name",
			content: "Название,Описание,Цена,Длительность\n,desc,100,40\n",
		},
		{
			name:    "missing column",
			content: "Название,Описание,Цена\nPython,desc,100\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeCSV(t, tt.content)); err == nil {
				t.Fatal("Load() = nil error, want load error")
			}
		})
	}
}

func TestListCourses(t *testing.T) {
	repo := loadSample(t)

	names := repo.ListCourses()
	want := []string{"Python Programming", "Web Development", "Data Science", "Python для анализа данных"}
	if len(names) != len(want) {
		t.Fatalf("ListCourses() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("ListCourses()[%d] = %q, want %q (load order must be preserved)", i, names[i], want[i])
		}
	}
}

func TestFormatCourseList(t *testing.T) {
	repo := loadSample(t)

	list := repo.FormatCourseList()
	for _, line := range []string{"1. Python Programming", "2. Web Development", "3. Data Science", "4. Python для анализа данных"} {
		if !strings.Contains(list, line) {
			t.Errorf("FormatCourseList() missing %q:\n%s", line, list)
		}
	}
}

func TestGetCourseInfo(t *testing.T) {
	repo := loadSample(t)

	tests := []struct {
		name     string
		query    string
		field    Field
		wantSubs []string
		notSubs  []string
	}{
		{
			name:     "price with unit suffix",
			query:    "Python",
			field:    FieldPrice,
			wantSubs: []string{"15000", "руб."},
		},
		{
			name:     "first match wins with note",
			query:    "Python",
			field:    FieldPrice,
			wantSubs: []string{"Python Programming", "несколько"},
		},
		{
			name:     "duration",
			query:    "web",
			field:    FieldDuration,
			wantSubs: []string{"60", "ч."},
		},
		{
			name:     "description",
			query:    "data science",
			field:    FieldDescription,
			wantSubs: []string{"Анализ данных и машинное обучение"},
		},
		{
			name:     "full record",
			query:    "Web Development",
			field:    FieldFull,
			wantSubs: []string{"Web Development", "20000", "руб.", "60", "ч.", "Верстка"},
			notSubs:  []string{"несколько"},
		},
		{
			name:     "not found is a message, not an error",
			query:    "Nonexistent",
			field:    FieldFull,
			wantSubs: []string{"не найден"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repo.GetCourseInfo(tt.query, tt.field)
			for _, sub := range tt.wantSubs {
				if !strings.Contains(got, sub) {
					t.Errorf("GetCourseInfo(%q, %s) = %q, missing %q", tt.query, tt.field, got, sub)
				}
			}
			for _, sub := range tt.notSubs {
				if strings.Contains(got, sub) {
					t.Errorf("GetCourseInfo(%q, %s) = %q, unexpected %q", tt.query, tt.field, got, sub)
				}
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{15000, "15000"},
		{89.9, "89.9"},
		{40, "40"},
	}
	for _, tt := range tests {
		if got := formatNumber(tt.in); got != tt.want {
			t.Errorf("formatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
