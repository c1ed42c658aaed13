package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/fefu-lab-api/internal/models"
	"github.com/noah-isme/fefu-lab-api/internal/repository"
	"github.com/noah-isme/fefu-lab-api/pkg/config"
	"github.com/noah-isme/fefu-lab-api/pkg/database"
	"github.com/noah-isme/fefu-lab-api/pkg/logger"
)

type enrollmentSeed struct {
	student int
	course  int
	status  models.EnrollmentStatus
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("connect postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if err := database.Migrate(ctx, db, logr); err != nil {
		logr.Fatal("migrate", zap.Error(err))
	}

	s := seeder{
		students:    repository.NewStudentRepository(db),
		instructors: repository.NewInstructorRepository(db),
		courses:     repository.NewCourseRepository(db),
		enrollments: repository.NewEnrollmentRepository(db),
		logger:      logr,
	}
	if err := s.run(ctx); err != nil {
		logr.Fatal("seed failed", zap.Error(err))
	}
}

type seeder struct {
	students    *repository.StudentRepository
	instructors *repository.InstructorRepository
	courses     *repository.CourseRepository
	enrollments *repository.EnrollmentRepository
	logger      *zap.Logger
}

func (s seeder) run(ctx context.Context) error {
	s.logger.Info("removing existing catalogue data")
	// Enrollments go with their students and courses.
	if err := s.courses.DeleteAll(ctx); err != nil {
		return err
	}
	if err := s.students.DeleteAll(ctx); err != nil {
		return err
	}
	if err := s.instructors.DeleteAll(ctx); err != nil {
		return err
	}

	instructors := []*models.Instructor{
		{FirstName: "Иван", LastName: "Петров", Email: "i.petrov@dvfu.ru", Specialization: "Кибербезопасность", Degree: models.DegreePhD, Bio: "Кандидат технических наук, специалист по защите информации", Active: true},
		{FirstName: "Мария", LastName: "Сидорова", Email: "m.sidorova@dvfu.ru", Specialization: "Веб-разработка", Degree: models.DegreeDSc, Bio: "Доктор технических наук, эксперт в области веб-технологий", Active: true},
		{FirstName: "Алексей", LastName: "Козлов", Email: "a.kozlov@dvfu.ru", Specialization: "Сетевые технологии", Degree: models.DegreePhD, Bio: "Кандидат наук, специалист по компьютерным сетям", Active: true},
	}
	for _, instructor := range instructors {
		if err := s.instructors.Create(ctx, instructor); err != nil {
			return err
		}
	}

	students := []*models.Student{
		student("Анна", "Иванова", "anna.ivanova@students.dvfu.ru", date(2003, time.May, 15), models.FacultyCS),
		student("Дмитрий", "Смирнов", "dmitry.smirnov@students.dvfu.ru", date(2002, time.August, 22), models.FacultySE),
		student("Екатерина", "Попова", "ekaterina.popova@students.dvfu.ru", date(2003, time.March, 10), models.FacultyIT),
		student("Михаил", "Васильев", "mikhail.vasilyev@students.dvfu.ru", date(2003, time.November, 5), models.FacultyDS),
		student("Ольга", "Новикова", "olga.novikova@students.dvfu.ru", date(2002, time.December, 30), models.FacultyWEB),
		student("Сергей", "Петров", "sergey.petrov@students.dvfu.ru", date(2003, time.July, 18), models.FacultyCS),
	}
	for _, st := range students {
		if err := s.students.Create(ctx, st); err != nil {
			return err
		}
	}

	courses := []*models.Course{
		course("Основы Python", "python-basics", "Базовый курс по программированию на языке Python. Изучение синтаксиса, структур данных и основ объектно-ориентированного программирования.", 36, instructors[0], models.LevelBeginner, 25, 0),
		course("Веб-безопасность", "web-security", "Продвинутый курс по защите веб-приложений. SQL-инъекции, XSS, CSRF и другие уязвимости. Практические методы защиты.", 48, instructors[0], models.LevelAdvanced, 20, 15000),
		course("Современный JavaScript", "modern-javascript", "Изучение современных возможностей JavaScript: ES6+, асинхронное программирование, работа с фреймворками React и Vue.", 42, instructors[1], models.LevelIntermediate, 30, 12000),
		course("Защита сетей", "network-defense", "Курс по защите компьютерных сетей. Firewalls, IDS/IPS, VPN и методы атак на сети. Практика на реальных примерах.", 40, instructors[2], models.LevelAdvanced, 15, 18000),
		course("Django для начинающих", "django-beginners", "Введение в веб-разработку на Python с использованием фреймворка Django. Создание полноценных веб-приложений.", 50, instructors[1], models.LevelBeginner, 20, 10000),
	}
	for _, c := range courses {
		if err := s.courses.Create(ctx, c); err != nil {
			return err
		}
	}

	enrollments := []enrollmentSeed{
		{0, 0, models.EnrollmentStatusActive},
		{0, 1, models.EnrollmentStatusActive},
		{1, 0, models.EnrollmentStatusActive},
		{1, 2, models.EnrollmentStatusActive},
		{2, 0, models.EnrollmentStatusCompleted},
		{2, 4, models.EnrollmentStatusActive},
		{3, 3, models.EnrollmentStatusActive},
		{4, 2, models.EnrollmentStatusActive},
		{4, 4, models.EnrollmentStatusActive},
		{5, 1, models.EnrollmentStatusActive},
	}
	for _, e := range enrollments {
		err := s.enrollments.Create(ctx, &models.Enrollment{
			StudentID: students[e.student].ID,
			CourseID:  courses[e.course].ID,
			Status:    e.status,
		})
		if err != nil {
			return err
		}
	}

	s.logger.Info(fmt.Sprintf("seeded %d instructors, %d students, %d courses, %d enrollments",
		len(instructors), len(students), len(courses), len(enrollments)))
	return nil
}

func student(first, last, email string, birth time.Time, faculty models.Faculty) *models.Student {
	return &models.Student{
		FirstName: first,
		LastName:  last,
		Email:     email,
		BirthDate: &birth,
		Faculty:   faculty,
		Role:      models.RoleStudent,
		Active:    true,
	}
}

func course(title, slug, description string, duration int, instructor *models.Instructor, level models.CourseLevel, seats int, price int64) *models.Course {
	return &models.Course{
		Title:        title,
		Slug:         slug,
		Description:  description,
		Duration:     duration,
		InstructorID: &instructor.ID,
		Level:        level,
		MaxStudents:  seats,
		Price:        decimal.NewFromInt(price),
		Active:       true,
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
