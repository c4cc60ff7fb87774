/*


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


package v1

import "sigs.k8s.io/controller-runtime/pkg/client"

// StatusErrors holds the errors of the last reconciliation
type StatusErrors struct {
	Errors []string `json:"errors,omitempty"`
}

// PowerCRWithStatusErrors is implemented by every CR that reports
// reconciliation errors in its status
// +kubebuilder:object:generate=false
type PowerCRWithStatusErrors interface {
	client.Object
	SetStatusErrors(errs *[]string)
	GetStatusErrors() *[]string
}
