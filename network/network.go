package network

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/SirZenith/kgebench/common"
	"github.com/charmbracelet/log"
	"github.com/gocolly/colly/v2"
)

var ErrMaxRetry = errors.New("max retry")

type DownloadOptions struct {
	ProxyURL string
	JobCnt   int
	RetryCnt int
	Timeout  time.Duration
	Delay    time.Duration
}

// Target is a file to be downloaded.
type Target struct {
	URL        string
	OutputPath string
}

// Download fetches all targets concurrently and writes decoded response bodies
// to their output paths. Every failed target is reported in returned error.
func Download(ctx context.Context, targets []Target, options DownloadOptions) error {
	if len(targets) == 0 {
		return nil
	}

	c := colly.NewCollector(
		colly.Async(true),
	)
	// dataset archives easily exceed colly's default body size limit
	c.MaxBodySize = 0
	c.SetRequestTimeout(common.GetDurationOr(options.Timeout, 60*time.Second))

	if options.ProxyURL != "" {
		if err := c.SetProxy(options.ProxyURL); err != nil {
			return fmt.Errorf("invalid proxy %s: %s", options.ProxyURL, err)
		}
	}

	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Delay:       options.Delay,
		Parallelism: common.GetIntOr(options.JobCnt, 4),
	}); err != nil {
		return fmt.Errorf("failed to setup request limit: %s", err)
	}

	var lock sync.Mutex
	var errList []error
	addErr := func(err error) {
		lock.Lock()
		defer lock.Unlock()
		errList = append(errList, err)
	}

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	c.OnResponse(func(r *colly.Response) {
		outputPath := r.Ctx.Get("outputPath")

		data, err := DecompressResponseBody(r)
		if err != nil {
			addErr(fmt.Errorf("%s: %s", r.Request.URL, err))
			return
		}

		err = common.WriteFileAtomic(outputPath, func(w io.Writer) error {
			_, err := io.Copy(w, bytes.NewReader(data))
			return err
		})
		if err != nil {
			addErr(err)
			return
		}

		log.Infof("file downloaded: %s", outputPath)
	})

	c.OnError(func(r *colly.Response, err error) {
		retryCnt, retryErr := RetryRequest(r.Request)
		if retryErr == nil {
			log.Warnf("retry %d for %s: %s", retryCnt, r.Request.URL, err)
			return
		}

		if errors.Is(retryErr, ErrMaxRetry) {
			addErr(fmt.Errorf("failed to download %s: %s", r.Request.URL, err))
		} else {
			addErr(fmt.Errorf("failed to retry %s: %s", r.Request.URL, retryErr))
		}
	})

	for _, target := range targets {
		reqCtx := colly.NewContext()
		reqCtx.Put("outputPath", target.OutputPath)
		reqCtx.Put("maxRetryCnt", options.RetryCnt)

		log.Debugf("requesting %s", target.URL)
		if err := c.Request("GET", target.URL, nil, reqCtx, nil); err != nil {
			addErr(fmt.Errorf("failed to request %s: %s", target.URL, err))
		}
	}

	c.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}

	return errors.Join(errList...)
}

// RetryRequest reads `retryCnt` and `maxRetryCnt` from request context. If
// current retry count is less than max retry count, the request is retried,
// else `ErrMaxRetry` is returned.
// Returns retry count after the call and error that happened while retrying.
func RetryRequest(req *colly.Request) (int, error) {
	ctx := req.Ctx

	maxRetryCnt, _ := ctx.GetAny("maxRetryCnt").(int)

	retryCnt, _ := ctx.GetAny("retryCnt").(int)
	if retryCnt >= maxRetryCnt {
		return retryCnt, ErrMaxRetry
	}

	retryCnt++
	ctx.Put("retryCnt", retryCnt)

	return retryCnt, req.Retry()
}
