package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "FEFU Lab API",
        "description": "Students, instructors, courses and enrollments of the FEFU laboratory portal.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {
            "name": "Pages"
        },
        {
            "name": "Students"
        },
        {
            "name": "Courses"
        },
        {
            "name": "Enrollments"
        },
        {
            "name": "Authentication"
        },
        {
            "name": "Profile"
        },
        {
            "name": "Dashboard",
            "description": "Role dashboards and roster exports"
        },
        {
            "name": "Management",
            "description": "Administrator catalogue management"
        },
        {
            "name": "Ops"
        }
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": [
                    "Ops"
                ],
                "summary": "Liveness probe",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "tags": [
                    "Ops"
                ],
                "summary": "Readiness probe pinging Postgres and Redis",
                "responses": {
                    "200": {
                        "description": "Ready"
                    },
                    "503": {
                        "description": "Dependency down"
                    }
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": [
                    "Ops"
                ],
                "summary": "Prometheus metrics",
                "produces": [
                    "text/plain"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/": {
            "get": {
                "tags": [
                    "Pages"
                ],
                "summary": "Landing page counts and newest courses",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/about/": {
            "get": {
                "tags": [
                    "Pages"
                ],
                "summary": "About the lab",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/feedback/": {
            "get": {
                "tags": [
                    "Pages"
                ],
                "summary": "Empty feedback form",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "Pages"
                ],
                "summary": "Send feedback",
                "consumes": [
                    "application/x-www-form-urlencoded"
                ],
                "parameters": [
                    {
                        "name": "name",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "email",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "subject",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "message",
                        "in": "formData",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/students/": {
            "get": {
                "tags": [
                    "Students"
                ],
                "summary": "List active students",
                "parameters": [
                    {
                        "name": "q",
                        "in": "query",
                        "type": "string",
                        "description": "Search by name or email"
                    },
                    {
                        "name": "faculty",
                        "in": "query",
                        "type": "string",
                        "description": "CS, SE, IT, DS or WEB"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/student/{id}/": {
            "get": {
                "tags": [
                    "Students"
                ],
                "summary": "Student detail with active enrollments",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/courses/": {
            "get": {
                "tags": [
                    "Courses"
                ],
                "summary": "List active courses",
                "parameters": [
                    {
                        "name": "q",
                        "in": "query",
                        "type": "string",
                        "description": "Search by title or description"
                    },
                    {
                        "name": "level",
                        "in": "query",
                        "type": "string",
                        "description": "BEGINNER, INTERMEDIATE or ADVANCED"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/course/{slug}/": {
            "get": {
                "tags": [
                    "Courses"
                ],
                "summary": "Course detail with instructor and roster",
                "parameters": [
                    {
                        "name": "slug",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/course/{slug}/enroll/": {
            "get": {
                "tags": [
                    "Enrollments"
                ],
                "summary": "Enrollment form",
                "parameters": [
                    {
                        "name": "slug",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "302": {
                        "description": "Redirect to login or home"
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "Enrollments"
                ],
                "summary": "Enroll into a course",
                "consumes": [
                    "application/x-www-form-urlencoded"
                ],
                "parameters": [
                    {
                        "name": "slug",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "student_id",
                        "in": "formData",
                        "type": "string"
                    }
                ],
                "responses": {
                    "303": {
                        "description": "See Other"
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "302": {
                        "description": "Redirect to login or home"
                    }
                }
            }
        },
        "/enrollments/{id}/cancel/": {
            "post": {
                "tags": [
                    "Enrollments"
                ],
                "summary": "Cancel an active enrollment",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "303": {
                        "description": "See Other"
                    },
                    "302": {
                        "description": "Redirect to login or home"
                    },
                    "409": {
                        "description": "Not active",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/enrollments/{id}/complete/": {
            "post": {
                "tags": [
                    "Enrollments"
                ],
                "summary": "Complete an active enrollment",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "303": {
                        "description": "See Other"
                    },
                    "302": {
                        "description": "Redirect to login or home"
                    },
                    "409": {
                        "description": "Not active",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/register/": {
            "get": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Registration form",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Create an account and its profile",
                "consumes": [
                    "application/x-www-form-urlencoded"
                ],
                "parameters": [
                    {
                        "name": "first_name",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "last_name",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "email",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "password",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "password_confirm",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "faculty",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "role",
                        "in": "formData",
                        "type": "string"
                    }
                ],
                "responses": {
                    "303": {
                        "description": "See Other"
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/login/": {
            "get": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Login form",
                "parameters": [
                    {
                        "name": "next",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Authenticate by email or username",
                "consumes": [
                    "application/x-www-form-urlencoded"
                ],
                "parameters": [
                    {
                        "name": "username",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "password",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "next",
                        "in": "formData",
                        "type": "string"
                    }
                ],
                "responses": {
                    "303": {
                        "description": "See Other"
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Invalid credentials",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/logout/": {
            "post": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Revoke the current session",
                "responses": {
                    "303": {
                        "description": "See Other"
                    }
                }
            }
        },
        "/profile/": {
            "get": {
                "tags": [
                    "Profile"
                ],
                "summary": "Own profile",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "302": {
                        "description": "Redirect to login or home"
                    }
                }
            },
            "post": {
                "tags": [
                    "Profile"
                ],
                "summary": "Edit own profile",
                "consumes": [
                    "multipart/form-data"
                ],
                "parameters": [
                    {
                        "name": "first_name",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "last_name",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "email",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "phone",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "faculty",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "bio",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "avatar",
                        "in": "formData",
                        "type": "file"
                    }
                ],
                "responses": {
                    "303": {
                        "description": "See Other"
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "302": {
                        "description": "Redirect to login or home"
                    }
                }
            }
        },
        "/dashboard/student/": {
            "get": {
                "tags": [
                    "Dashboard"
                ],
                "summary": "Student dashboard",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "302": {
                        "description": "Redirect to login or home"
                    }
                }
            }
        },
        "/dashboard/teacher/": {
            "get": {
                "tags": [
                    "Dashboard"
                ],
                "summary": "Teacher dashboard with seat usage",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "302": {
                        "description": "Redirect to login or home"
                    }
                }
            }
        },
        "/dashboard/admin/": {
            "get": {
                "tags": [
                    "Dashboard"
                ],
                "summary": "Admin dashboard summary",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "302": {
                        "description": "Redirect to login or home"
                    }
                }
            }
        },
        "/dashboard/admin/courses/{slug}/roster.csv": {
            "get": {
                "tags": [
                    "Dashboard"
                ],
                "summary": "Course roster as CSV",
                "produces": [
                    "text/csv"
                ],
                "parameters": [
                    {
                        "name": "slug",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "CSV file"
                    },
                    "302": {
                        "description": "Redirect to login or home"
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/dashboard/admin/courses/{slug}/roster.pdf": {
            "get": {
                "tags": [
                    "Dashboard"
                ],
                "summary": "Course roster as PDF",
                "produces": [
                    "application/pdf"
                ],
                "parameters": [
                    {
                        "name": "slug",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "PDF file"
                    },
                    "302": {
                        "description": "Redirect to login or home"
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/manage/instructors/": {
            "get": {
                "tags": [
                    "Management"
                ],
                "summary": "List instructors",
                "parameters": [
                    {
                        "name": "q",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "302": {
                        "description": "Redirect to login or home"
                    }
                }
            },
            "post": {
                "tags": [
                    "Management"
                ],
                "summary": "Create an instructor",
                "consumes": [
                    "application/x-www-form-urlencoded"
                ],
                "parameters": [
                    {
                        "name": "first_name",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "last_name",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "email",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "specialization",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "degree",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "bio",
                        "in": "formData",
                        "type": "string"
                    }
                ],
                "responses": {
                    "303": {
                        "description": "See Other"
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "302": {
                        "description": "Redirect to login or home"
                    }
                }
            }
        },
        "/manage/instructors/{id}/": {
            "put": {
                "tags": [
                    "Management"
                ],
                "summary": "Update an instructor",
                "consumes": [
                    "application/x-www-form-urlencoded"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "first_name",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "last_name",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "email",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "specialization",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "degree",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "bio",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "active",
                        "in": "formData",
                        "type": "string"
                    }
                ],
                "responses": {
                    "303": {
                        "description": "See Other"
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "302": {
                        "description": "Redirect to login or home"
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "Management"
                ],
                "summary": "Delete an instructor",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "303": {
                        "description": "See Other"
                    },
                    "302": {
                        "description": "Redirect to login or home"
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/manage/courses/": {
            "post": {
                "tags": [
                    "Management"
                ],
                "summary": "Create a course",
                "consumes": [
                    "application/x-www-form-urlencoded"
                ],
                "parameters": [
                    {
                        "name": "title",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "description",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "duration",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "instructor_id",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "level",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "max_students",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "price",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "active",
                        "in": "formData",
                        "type": "string"
                    }
                ],
                "responses": {
                    "303": {
                        "description": "See Other"
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "302": {
                        "description": "Redirect to login or home"
                    }
                }
            }
        },
        "/manage/courses/{slug}/": {
            "put": {
                "tags": [
                    "Management"
                ],
                "summary": "Update a course",
                "consumes": [
                    "application/x-www-form-urlencoded"
                ],
                "parameters": [
                    {
                        "name": "slug",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "title",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "description",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "duration",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "instructor_id",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "level",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "max_students",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "price",
                        "in": "formData",
                        "type": "string"
                    },
                    {
                        "name": "active",
                        "in": "formData",
                        "type": "string"
                    }
                ],
                "responses": {
                    "303": {
                        "description": "See Other"
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "302": {
                        "description": "Redirect to login or home"
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "Management"
                ],
                "summary": "Delete a course and its enrollments",
                "parameters": [
                    {
                        "name": "slug",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "303": {
                        "description": "See Other"
                    },
                    "302": {
                        "description": "Redirect to login or home"
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/manage/students/{id}/": {
            "delete": {
                "tags": [
                    "Management"
                ],
                "summary": "Delete a student and their enrollments",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "303": {
                        "description": "See Other"
                    },
                    "302": {
                        "description": "Redirect to login or home"
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/media/avatars/{token}": {
            "get": {
                "tags": [
                    "Profile"
                ],
                "summary": "Avatar behind a signed link",
                "produces": [
                    "image/png",
                    "image/jpeg",
                    "image/gif",
                    "image/webp"
                ],
                "parameters": [
                    {
                        "name": "token",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Image"
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "total_count": {
                    "type": "integer"
                },
                "total_pages": {
                    "type": "integer"
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                },
                "fields": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "array",
                        "items": {
                            "type": "string"
                        }
                    }
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "form": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "string"
                    }
                },
                "pagination": {
                    "$ref": "#/definitions/Pagination"
                },
                "meta": {
                    "type": "object"
                }
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
