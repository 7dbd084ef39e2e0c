package services_test

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"

	"github.com/campi/campi/internal/events"
	"github.com/campi/campi/internal/models"
	"github.com/campi/campi/internal/services"
	"github.com/campi/campi/internal/store"
	"github.com/campi/campi/internal/store/migrations"
	"github.com/campi/campi/pkg/pool"
)

type published struct {
	subject string
	value   any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, published{subject: subject, value: v})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.subject)
	}
	return out
}

var _ events.Publisher = &recordingPublisher{}

func served(path string, status int) models.Request {
	return models.NewRequest(uuid.New(), "10.0.0.7:41000", models.Response{
		RequestLine: "GET " + path + " HTTP/1.1",
		Path:        path,
		Status:      status,
		Bytes:       128,
		Duration:    1500 * time.Microsecond,
	})
}

var _ = Describe("AccessLog", func() {
	var (
		ctx       context.Context
		db        *sql.DB
		st        *store.Store
		publisher *recordingPublisher
		svc       *services.AccessLog
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())
		Expect(migrations.Run(ctx, db)).To(Succeed())

		st = store.NewStore(db)
		publisher = &recordingPublisher{}
		svc = services.NewAccessLogService(st, publisher)
	})

	AfterEach(func() {
		db.Close()
	})

	Context("Record", func() {
		It("should store the request and publish it", func() {
			r := served("/", 200)

			svc.Record(ctx, r)

			got, err := st.Requests().Get(ctx, r.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Path).To(Equal("/"))
			Expect(got.Status).To(Equal(200))
			Expect(got.DurationMs).To(BeNumerically("~", 1.5, 0.001))
			Expect(publisher.subjects()).To(Equal([]string{events.SubjectRequests}))
		})

		It("should keep the request when publishing fails", func() {
			publisher.err = errors.New("broker down")
			r := served("/nope", 404)

			svc.Record(ctx, r)

			_, err := st.Requests().Get(ctx, r.ID)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should not panic when the database is gone", func() {
			db.Close()

			Expect(func() { svc.Record(ctx, served("/", 200)) }).NotTo(Panic())
			Expect(publisher.subjects()).To(HaveLen(1))
		})

		It("should work without a publisher", func() {
			svc = services.NewAccessLogService(st, nil)
			r := served("/", 200)

			svc.Record(ctx, r)

			_, err := st.Requests().Get(ctx, r.ID)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Context("List", func() {
		BeforeEach(func() {
			svc.Record(ctx, served("/", 200))
			svc.Record(ctx, served("/", 200))
			svc.Record(ctx, served("/capture", 503))
			svc.Record(ctx, served("/missing", 404))
			svc.Record(ctx, served("/other", 404))
		})

		It("should return every request with the total", func() {
			result, err := svc.List(ctx, services.RequestListParams{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Requests).To(HaveLen(5))
			Expect(result.Total).To(Equal(5))
		})

		It("should filter by status", func() {
			result, err := svc.List(ctx, services.RequestListParams{Statuses: []int{404}})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Total).To(Equal(2))
			for _, r := range result.Requests {
				Expect(r.Status).To(Equal(404))
			}
		})

		It("should filter by path", func() {
			result, err := svc.List(ctx, services.RequestListParams{Paths: []string{"/capture"}})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Total).To(Equal(1))
			Expect(result.Requests[0].Status).To(Equal(503))
		})

		// Given five requests
		// When a page of two at offset four is requested
		// Then one request is returned and the total ignores pagination
		It("should paginate without changing the total", func() {
			result, err := svc.List(ctx, services.RequestListParams{Limit: 2, Offset: 4})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Requests).To(HaveLen(1))
			Expect(result.Total).To(Equal(5))
		})
	})

	Context("RecordFailure", func() {
		It("should store the failure and publish it", func() {
			perr := &pool.TaskPanicError{WorkerID: 3, Value: "boom", Stack: []byte("goroutine 7 [running]:")}

			svc.RecordFailure(ctx, perr)

			failures, err := svc.Failures(ctx, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(failures).To(HaveLen(1))
			Expect(failures[0].WorkerID).To(Equal(3))
			Expect(failures[0].Message).To(ContainSubstring("boom"))
			Expect(failures[0].Stack).To(ContainSubstring("goroutine 7"))
			Expect(publisher.subjects()).To(Equal([]string{events.SubjectFailures}))
		})

		It("should honour the limit", func() {
			for i := range 4 {
				svc.RecordFailure(ctx, &pool.TaskPanicError{WorkerID: i, Value: i})
			}

			failures, err := svc.Failures(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(failures).To(HaveLen(2))
		})
	})

	Context("Export", func() {
		It("should write a workbook with a header and one row per request", func() {
			svc.Record(ctx, served("/", 200))
			svc.Record(ctx, served("/capture", 200))

			var buf bytes.Buffer
			Expect(svc.Export(ctx, &buf)).To(Succeed())

			f, err := excelize.OpenReader(&buf)
			Expect(err).NotTo(HaveOccurred())
			defer f.Close()

			rows, err := f.GetRows("Sheet1")
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(3))
			Expect(rows[0][0]).To(Equal("ID"))
			Expect(rows[0][4]).To(Equal("Path"))

			paths := []string{rows[1][4], rows[2][4]}
			Expect(paths).To(ConsistOf("/", "/capture"))
			Expect(rows[1][5]).To(Equal("200"))
		})

		It("should write only the header for an empty log", func() {
			var buf bytes.Buffer
			Expect(svc.Export(ctx, &buf)).To(Succeed())

			f, err := excelize.OpenReader(&buf)
			Expect(err).NotTo(HaveOccurred())
			defer f.Close()

			rows, err := f.GetRows("Sheet1")
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
		})
	})
})
