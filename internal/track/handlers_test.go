package track

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

const sampleGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">
  <trk><name>Morning hike</name><trkseg>
    <trkpt lat="46.1" lon="7.2"><ele>1200</ele></trkpt>
    <trkpt lat="46.101" lon="7.201"><ele>1210</ele></trkpt>
  </trkseg></trk>
</gpx>`

func testApp(mock pgxmock.PgxPoolIface) *fiber.App {
	app := fiber.New()
	authStub := func(c *fiber.Ctx) error {
		c.Locals("user_id", "user-1")
		return c.Next()
	}
	RegisterRoutes(app.Group("/tracks"), NewService(mock, nil, nil), authStub)
	return app
}

func TestTrackHandlersUpload(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO tracks`).
		WithArgs(pgxmock.AnyArg(), "user-1", "Morning hike", 2, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	for i := 0; i < 2; i++ {
		mock.ExpectExec(`INSERT INTO track_points`).
			WithArgs(pgxmock.AnyArg(), i, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}

	app := testApp(mock)
	req := httptest.NewRequest(http.MethodPost, "/tracks/", strings.NewReader(sampleGPX))
	req.Header.Set("Content-Type", "application/gpx+xml")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload status: %v %v", err, resp.StatusCode)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTrackHandlersUploadEmptyBody(t *testing.T) {
	app := testApp(nil)
	req := httptest.NewRequest(http.MethodPost, "/tracks/", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request, got %d", resp.StatusCode)
	}
}

func TestTrackHandlersUploadBadGPX(t *testing.T) {
	app := testApp(nil)
	req := httptest.NewRequest(http.MethodPost, "/tracks/", strings.NewReader("<gpx"))
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request, got %d", resp.StatusCode)
	}
}

func TestTrackHandlersGet(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	cols := []string{"id", "user_id", "name", "point_count", "distance_m", "elevation_gain_m", "elevation_loss_m", "min_elevation_m", "max_elevation_m", "duration_ms", "created_at"}
	mock.ExpectQuery(`SELECT id, user_id, name, point_count`).
		WithArgs("trk-1").
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow("trk-1", "user-1", "Hike", 2, 1500.0, 50.0, 0.0, nil, nil, nil, time.Now()))

	app := testApp(mock)
	req := httptest.NewRequest(http.MethodGet, "/tracks/trk-1", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("get status: %v", err)
	}
}

func TestTrackHandlersGetNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	cols := []string{"id", "user_id", "name", "point_count", "distance_m", "elevation_gain_m", "elevation_loss_m", "min_elevation_m", "max_elevation_m", "duration_ms", "created_at"}
	mock.ExpectQuery(`SELECT id, user_id, name, point_count`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(cols))

	app := testApp(mock)
	req := httptest.NewRequest(http.MethodGet, "/tracks/missing", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected not found, got %d", resp.StatusCode)
	}
}

func TestTrackHandlersStatsAndPoints(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	pointRows := func() *pgxmock.Rows {
		return pgxmock.NewRows([]string{"lat", "lng", "elevation_m", "recorded_at"}).
			AddRow(46.1, 7.2, nil, nil).
			AddRow(46.11, 7.21, nil, nil)
	}
	mock.ExpectQuery(`SELECT ST_Y\(location::geometry\), ST_X\(location::geometry\)`).
		WithArgs("trk-1").
		WillReturnRows(pointRows())
	mock.ExpectQuery(`SELECT ST_Y\(location::geometry\), ST_X\(location::geometry\)`).
		WithArgs("trk-1").
		WillReturnRows(pointRows())

	app := testApp(mock)

	req := httptest.NewRequest(http.MethodGet, "/tracks/trk-1/points", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("points status: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/tracks/trk-1/stats", nil)
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("stats status: %v", err)
	}
}

func TestTrackHandlersDelete(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM tracks`).
		WithArgs("trk-1", "user-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	app := testApp(mock)
	req := httptest.NewRequest(http.MethodDelete, "/tracks/trk-1", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status: %v", err)
	}
}
