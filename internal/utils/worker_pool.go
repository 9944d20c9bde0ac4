package utils

import (
	"log"
	"sync"
)

// WorkerPool 通用协程池
// 后台同步任务走这里，不在请求协程里直接起 goroutine。
type WorkerPool struct {
	JobQueue  chan func()
	WorkerNum int
	wg        sync.WaitGroup
	quit      chan bool
}

// NewWorkerPool 创建一个新的协程池
func NewWorkerPool(workerNum int, queueSize int) *WorkerPool {
	return &WorkerPool{
		JobQueue:  make(chan func(), queueSize),
		WorkerNum: workerNum,
		quit:      make(chan bool),
	}
}

// Start 启动协程池
func (p *WorkerPool) Start() {
	for i := 0; i < p.WorkerNum; i++ {
		p.wg.Add(1)
		go func(workerID int) {
			defer p.wg.Done()
			for {
				select {
				case job := <-p.JobQueue:
					// 使用 defer recover 防止单个任务 panic 导致 worker 挂掉
					func() {
						defer func() {
							if r := recover(); r != nil {
								log.Printf("Worker %d panic: %v", workerID, r)
							}
						}()
						job()
					}()
				case <-p.quit:
					return
				}
			}
		}(i)
	}
}

// TrySubmit 提交任务到协程池，队列满时直接丢弃并返回 false
// 后台同步是尽力而为的，宁可丢任务也不能把请求协程卡住。
func (p *WorkerPool) TrySubmit(job func()) bool {
	select {
	case p.JobQueue <- job:
		return true
	default:
		return false
	}
}

// Submit 提交任务到协程池，队列满时阻塞等待
func (p *WorkerPool) Submit(job func()) {
	p.JobQueue <- job
}

// Stop 停止协程池
func (p *WorkerPool) Stop() {
	close(p.quit)
	p.wg.Wait()
}
