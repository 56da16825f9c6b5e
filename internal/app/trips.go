/*
   Copyright 2025 The DIRPX Authors

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package app

import (
	"net/http"
	"time"

	"dirpx.dev/problem"
	"dirpx.dev/problem/ginx"
	"dirpx.dev/problem/upstream"
	"dirpx.dev/problem/validation"
	"github.com/gin-gonic/gin"
)

// Trip is the trips backend's representation of a booked journey.
type Trip struct {
	ID          string    `json:"id"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Passengers  int       `json:"passengers"`
	DepartAt    time.Time `json:"departAt"`
}

// Leg is one segment of a trip.
type Leg struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// TripRequest is the payload of POST /trips.
type TripRequest struct {
	Origin      string `json:"origin" binding:"required"`
	Destination string `json:"destination" binding:"required"`
	Passengers  int    `json:"passengers" binding:"gt=0,lte=9"`
	DepartAt    string `json:"departAt" binding:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Email       string `json:"email" binding:"omitempty,email"`
}

var _ validation.ObjectValidator = TripRequest{}

// ValidateObject implements validation.ObjectValidator.
func (r TripRequest) ValidateObject() []string {
	if r.Origin != "" && r.Origin == r.Destination {
		return []string{"origin and destination must differ"}
	}
	return nil
}

type tripHandler struct {
	trips     *upstream.Client
	validator *validation.Validator
}

// unavailable is returned as-is by the handlers when no trips backend is
// configured.
func unavailable() *problem.Detail {
	return problem.New(http.StatusServiceUnavailable,
		problem.WithDetailOption("Trips backend is not configured."))
}

func (h tripHandler) get(c *gin.Context) {
	if h.trips == nil {
		_ = c.Error(unavailable())
		return
	}
	var trip Trip
	if err := h.trips.GetJSON(c.Request.Context(), "trips/"+c.Param("id"), &trip); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (h tripHandler) legs(c *gin.Context) {
	if h.trips == nil {
		_ = c.Error(unavailable())
		return
	}
	var legs []Leg
	if err := h.trips.GetJSON(c.Request.Context(), "trips/"+c.Param("id")+"/legs", &legs); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, legs)
}

func (h tripHandler) create(c *gin.Context) {
	var req TripRequest
	if err := ginx.BindJSON(c, h.validator, &req); err != nil {
		_ = c.Error(err)
		return
	}
	if h.trips == nil {
		_ = c.Error(unavailable())
		return
	}
	var trip Trip
	if err := h.trips.Do(c.Request.Context(), http.MethodPost, "trips", req, &trip); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, trip)
}
