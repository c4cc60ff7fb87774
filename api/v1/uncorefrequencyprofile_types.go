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

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// EDIT THIS FILE!  THIS IS SCAFFOLDING FOR YOU TO OWN!
// NOTE: json tags are required.  Any new fields you add must have json tags for the fields to be serialized.

// UncoreFrequencyProfileSpec defines the desired state of UncoreFrequencyProfile
type UncoreFrequencyProfileSpec struct {
	// Offset in kHz subtracted from the hardware reported maximum uncore frequency
	//+kubebuilder:validation:Minimum=0
	MaxFreqKHzDelta int `json:"maxFreqKHzDelta"`

	// Uncore domains the profile applies to, all free domains of the node when empty
	Domains []string `json:"domains,omitempty"`

	// Compute the resulting frequencies without writing them
	Simulate bool `json:"simulate,omitempty"`
}

// UncoreDomainStatus is the frequency in effect for one uncore domain
type UncoreDomainStatus struct {
	ID              string `json:"id"`
	Delta           int    `json:"delta"`
	EffectiveMaxKHz int    `json:"effectiveMaxKHz,omitempty"`
}

// UncoreFrequencyProfileStatus defines the observed state of UncoreFrequencyProfile
type UncoreFrequencyProfileStatus struct {
	// Scheme the node exposes its uncore domains with
	Scheme       string               `json:"scheme,omitempty"`
	Domains      []UncoreDomainStatus `json:"domains,omitempty"`
	StatusErrors `json:",inline,omitempty"`
}

//+kubebuilder:object:root=true
//+kubebuilder:subresource:status

// UncoreFrequencyProfile is the Schema for the uncorefrequencyprofiles API
type UncoreFrequencyProfile struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   UncoreFrequencyProfileSpec   `json:"spec,omitempty"`
	Status UncoreFrequencyProfileStatus `json:"status,omitempty"`
}

//+kubebuilder:object:root=true

// UncoreFrequencyProfileList contains a list of UncoreFrequencyProfile
type UncoreFrequencyProfileList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []UncoreFrequencyProfile `json:"items"`
}

func (prfl *UncoreFrequencyProfile) SetStatusErrors(errs *[]string) {
	prfl.Status.Errors = *errs
}
func (prfl *UncoreFrequencyProfile) GetStatusErrors() *[]string {
	return &prfl.Status.Errors
}

func init() {
	SchemeBuilder.Register(&UncoreFrequencyProfile{}, &UncoreFrequencyProfileList{})
}
