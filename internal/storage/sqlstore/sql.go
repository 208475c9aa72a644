package sqlstore

// -----------------------------------------------------------------------------
// SCHEMA
// -----------------------------------------------------------------------------

const createEmployeesMySQL = `
CREATE TABLE IF NOT EXISTS employees (
  id        BIGINT       NOT NULL AUTO_INCREMENT PRIMARY KEY,
  name      VARCHAR(255) NOT NULL,
  job_title VARCHAR(255)
) ENGINE=InnoDB
`

const createReviewsMySQL = `
CREATE TABLE IF NOT EXISTS reviews (
  id          BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
  year        INT,
  summary     TEXT,
  employee_id BIGINT,
  CONSTRAINT fk_reviews_employee FOREIGN KEY (employee_id) REFERENCES employees(id)
) ENGINE=InnoDB
`

const createEmployeesSQLite = `
CREATE TABLE IF NOT EXISTS employees (
  id        INTEGER PRIMARY KEY,
  name      TEXT NOT NULL,
  job_title TEXT
)
`

const createReviewsSQLite = `
CREATE TABLE IF NOT EXISTS reviews (
  id          INTEGER PRIMARY KEY,
  year        INTEGER,
  summary     TEXT,
  employee_id INTEGER,
  FOREIGN KEY (employee_id) REFERENCES employees(id)
)
`

const dropEmployeesSQL = `DROP TABLE IF EXISTS employees`

const dropReviewsSQL = `DROP TABLE IF EXISTS reviews`

// -----------------------------------------------------------------------------
// WRITES
// -----------------------------------------------------------------------------

const insertEmployeeSQL = `INSERT INTO employees (name, job_title) VALUES (?, ?)`

const insertReviewSQL = `INSERT INTO reviews (year, summary, employee_id) VALUES (?, ?, ?)`

// The id parameter may be NULL; "id = NULL" matches nothing in either dialect.
const updateReviewSQL = `UPDATE reviews SET year = ?, summary = ?, employee_id = ? WHERE id = ?`

const deleteReviewSQL = `DELETE FROM reviews WHERE id = ?`

// -----------------------------------------------------------------------------
// READS
// -----------------------------------------------------------------------------

// Column order is the positional row shape (id, year, summary, employee_id).
const selectReviewByIDSQL = `SELECT id, year, summary, employee_id FROM reviews WHERE id = ?`

// No ORDER BY: rows come back in whatever order the store keeps them.
const selectReviewsSQL = `SELECT id, year, summary, employee_id FROM reviews`

const selectEmployeeByIDSQL = `SELECT id, name, job_title FROM employees WHERE id = ?`
