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

package grpcx

import (
	"strconv"
	"strings"
	"time"

	"dirpx.dev/problem"
	"dirpx.dev/problem/category"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorDomain is the ErrorInfo domain of every normalized status.
const ErrorDomain = "problem.dirpx.dev"

// ErrorInfo metadata keys.
const (
	MetaStatus    = "status"
	MetaTitle     = "title"
	MetaDetail    = "detail"
	MetaType      = "type"
	MetaInstance  = "instance"
	MetaTimestamp = "timestamp"
)

// ToStatus projects p onto a gRPC status. The code is derived from p.Status,
// the message is p.Detail (or p.Title when empty). Problem metadata travels
// in an errdetails.ErrorInfo whose reason is the upper-case category;
// Parameters problems additionally carry an errdetails.BadRequest with one
// field violation per entry.
func ToStatus(p *problem.Detail) *status.Status {
	if p == nil {
		return status.New(codes.OK, "")
	}
	n := p.Normalized()
	msg := n.Detail
	if msg == "" {
		msg = n.Title
	}
	base := status.New(CodeFromHTTPStatus(n.Status), msg)

	info := &errdetails.ErrorInfo{
		Reason: strings.ToUpper(n.Category.String()),
		Domain: ErrorDomain,
		Metadata: map[string]string{
			MetaStatus:   strconv.Itoa(n.Status),
			MetaTitle:    n.Title,
			MetaDetail:   n.Detail,
			MetaType:     n.Type,
			MetaInstance: n.Instance,
		},
	}
	if !n.Timestamp.IsZero() {
		info.Metadata[MetaTimestamp] = n.Timestamp.UTC().Format(time.RFC3339Nano)
	}

	var (
		st  *status.Status
		err error
	)
	if n.Category.CarriesErrors() {
		br := &errdetails.BadRequest{}
		for _, e := range n.Errors {
			field, desc, ok := strings.Cut(e, problem.Delimiter)
			if !ok {
				field, desc = "", e
			}
			br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
				Field:       field,
				Description: desc,
			})
		}
		st, err = base.WithDetails(info, br)
	} else {
		st, err = base.WithDetails(info)
	}
	if err != nil {
		return base
	}
	return st
}

// FromError reconstructs the problem carried by a status produced by
// ToStatus. It reports false when err carries no such status.
func FromError(err error) (*problem.Detail, bool) {
	st, ok := status.FromError(err)
	if !ok || st.Code() == codes.OK {
		return nil, false
	}

	var (
		info *errdetails.ErrorInfo
		br   *errdetails.BadRequest
	)
	for _, d := range st.Details() {
		switch v := d.(type) {
		case *errdetails.ErrorInfo:
			if v.GetDomain() == ErrorDomain {
				info = v
			}
		case *errdetails.BadRequest:
			br = v
		}
	}
	if info == nil {
		return nil, false
	}

	md := info.GetMetadata()
	code, convErr := strconv.Atoi(md[MetaStatus])
	if convErr != nil {
		code = HTTPStatusFromCode(st.Code())
	}
	c, catErr := category.Parse(info.GetReason())
	if catErr != nil {
		c = category.Generic
	}
	detail, ok := md[MetaDetail]
	if !ok {
		detail = st.Message()
	}
	p := &problem.Detail{
		Status:   code,
		Title:    md[MetaTitle],
		Detail:   detail,
		Type:     md[MetaType],
		Instance: md[MetaInstance],
		Category: c,
	}
	if ts, tsErr := time.Parse(time.RFC3339Nano, md[MetaTimestamp]); tsErr == nil {
		p.Timestamp = ts
	}
	if c.CarriesErrors() {
		p.Errors = []string{}
		for _, v := range br.GetFieldViolations() {
			if v.GetField() == "" {
				p.Errors = append(p.Errors, v.GetDescription())
				continue
			}
			p.Errors = append(p.Errors, v.GetField()+problem.Delimiter+v.GetDescription())
		}
	}
	return p.Normalized(), true
}
