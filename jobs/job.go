// Copyright 2024-2026
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package jobs

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/init-51/FinInsight/backtest"
	"github.com/init-51/FinInsight/portfolio"
)

// Status is the lifecycle state of a job. The only legal transitions are
// PENDING -> SUCCESS and PENDING -> FAILURE; both are terminal.
type Status int

const (
	StatusPending Status = iota
	StatusSuccess
	StatusFailure
)

const (
	statusPendingStr = "PENDING"
	statusSuccessStr = "SUCCESS"
	statusFailureStr = "FAILURE"
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return statusPendingStr
	case StatusSuccess:
		return statusSuccessStr
	case StatusFailure:
		return statusFailureStr
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Terminal reports whether no further transitions are possible
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailure
}

// ParseStatus converts the wire representation back to a Status
func ParseStatus(raw string) (Status, error) {
	switch raw {
	case statusPendingStr:
		return StatusPending, nil
	case statusSuccessStr:
		return StatusSuccess, nil
	case statusFailureStr:
		return StatusFailure, nil
	}
	return StatusPending, fmt.Errorf("unknown job status %q", raw)
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(raw []byte) error {
	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return err
	}
	parsed, err := ParseStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Job is one unit of asynchronous backtest work. Result and Error are
// mutually exclusive; each is populated exactly once, when the
// corresponding terminal status is reached.
type Job struct {
	ID        uuid.UUID            `json:"job_id"`
	Status    Status               `json:"status"`
	Portfolio *portfolio.Portfolio `json:"portfolio"`
	CreatedAt time.Time            `json:"created_at"`
	Result    *backtest.Result     `json:"result,omitempty"`
	Error     string               `json:"error,omitempty"`
}

// NewJob assigns an id and timestamp to a validated portfolio. The id
// exists before the job is persisted, so no reader can ever observe a
// partially-constructed job.
func NewJob(p *portfolio.Portfolio) *Job {
	return &Job{
		ID:        uuid.New(),
		Status:    StatusPending,
		Portfolio: p,
		CreatedAt: time.Now().UTC(),
	}
}

// HistoryEntry is a listing projection of a successful job; it is derived
// from the store on demand and never separately persisted
type HistoryEntry struct {
	JobID         uuid.UUID `json:"job_id"`
	PortfolioName string    `json:"portfolio_name"`
	FinalValue    float64   `json:"final_value"`
	CreatedAt     time.Time `json:"created_at"`
}
